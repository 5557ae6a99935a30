package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeState is the in-memory content of fakeRepo. Values are stored by value so
// callers never alias stored rows.
type fakeState struct {
	nextID    uint
	exams     map[uint]models.Exam
	questions map[uint]models.Question
	attempts  map[uint]models.ExamAttempt
	answers   map[uint]models.Answer
	folders   map[uint]models.Folder
	files     map[uint]models.File
}

func (st *fakeState) clone() fakeState {
	out := fakeState{
		nextID:    st.nextID,
		exams:     make(map[uint]models.Exam, len(st.exams)),
		questions: make(map[uint]models.Question, len(st.questions)),
		attempts:  make(map[uint]models.ExamAttempt, len(st.attempts)),
		answers:   make(map[uint]models.Answer, len(st.answers)),
		folders:   make(map[uint]models.Folder, len(st.folders)),
		files:     make(map[uint]models.File, len(st.files)),
	}
	for k, v := range st.exams {
		out.exams[k] = v
	}
	for k, v := range st.questions {
		out.questions[k] = v
	}
	for k, v := range st.attempts {
		out.attempts[k] = v
	}
	for k, v := range st.answers {
		out.answers[k] = v
	}
	for k, v := range st.folders {
		out.folders[k] = v
	}
	for k, v := range st.files {
		out.files[k] = v
	}
	return out
}

// fakeRepo is an in-memory repositories.Repository. WithTransaction serializes
// transactions and restores the previous state when fn fails.
type fakeRepo struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   fakeState

	// completeHook, when set, decides whether Complete wins the status update
	completeHook func(attemptID uint) bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{st: (&fakeState{}).clone()}
}

func (r *fakeRepo) id() uint {
	r.st.nextID++
	return r.st.nextID
}

func (r *fakeRepo) Exam() repositories.ExamRepository           { return fakeExams{r} }
func (r *fakeRepo) Question() repositories.QuestionRepository   { return fakeQuestions{r} }
func (r *fakeRepo) Attempt() repositories.AttemptRepository     { return fakeAttempts{r} }
func (r *fakeRepo) Answer() repositories.AnswerRepository       { return fakeAnswers{r} }
func (r *fakeRepo) Folder() repositories.FolderRepository       { return fakeFolders{r} }
func (r *fakeRepo) File() repositories.FileRepository           { return fakeFiles{r} }
func (r *fakeRepo) Dashboard() repositories.DashboardRepository { return fakeDashboard{r} }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := r.st.clone()
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.st = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

// answerCount returns the number of stored answers for an attempt
func (r *fakeRepo) answerCount(attemptID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.st.answers {
		if a.AttemptID == attemptID {
			n++
		}
	}
	return n
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ===== EXAMS =====

type fakeExams struct{ r *fakeRepo }

func (f fakeExams) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	exam.ID = f.r.id()
	exam.CreatedAt = time.Now()
	exam.UpdatedAt = exam.CreatedAt
	stored := *exam
	stored.Questions = nil
	f.r.st.exams[exam.ID] = stored
	return nil
}

func (f fakeExams) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	exam, ok := f.r.st.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &exam, nil
}

func (f fakeExams) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.exams[exam.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *exam
	stored.Questions = nil
	stored.UpdatedAt = time.Now()
	f.r.st.exams[exam.ID] = stored
	return nil
}

func (f fakeExams) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.exams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.st.exams, id)
	for qid, q := range f.r.st.questions {
		if q.ExamID == id {
			delete(f.r.st.questions, qid)
		}
	}
	for aid, a := range f.r.st.attempts {
		if a.ExamID != id {
			continue
		}
		delete(f.r.st.attempts, aid)
		for ansID, ans := range f.r.st.answers {
			if ans.AttemptID == aid {
				delete(f.r.st.answers, ansID)
			}
		}
	}
	return nil
}

func (f fakeExams) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	return f.GetByID(ctx, tx, id)
}

func (f fakeExams) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	exam, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	questions, _ := fakeQuestions(f).GetByExam(ctx, tx, id)
	exam.Questions = make([]models.Question, 0, len(questions))
	for _, q := range questions {
		exam.Questions = append(exam.Questions, *q)
	}
	exam.QuestionsCount = len(exam.Questions)
	return exam, nil
}

func (f fakeExams) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()

	var exams []*models.Exam
	for _, e := range f.r.st.exams {
		if filters.FolderID != nil && (e.FolderID == nil || *e.FolderID != *filters.FolderID) {
			continue
		}
		if filters.IsPublished != nil && e.IsPublished != *filters.IsPublished {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(filters.Search)) {
			continue
		}
		e := e
		exams = append(exams, &e)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return paginate(exams, filters.Offset, filters.Limit), int64(len(exams)), nil
}

func (f fakeExams) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	_, ok := f.r.st.exams[id]
	return ok, nil
}

func (f fakeExams) DetachFolder(ctx context.Context, tx *gorm.DB, folderID uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for id, e := range f.r.st.exams {
		if e.FolderID != nil && *e.FolderID == folderID {
			e.FolderID = nil
			f.r.st.exams[id] = e
		}
	}
	return nil
}

// ===== QUESTIONS =====

type fakeQuestions struct{ r *fakeRepo }

func (f fakeQuestions) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	return f.CreateBatch(ctx, tx, []*models.Question{q})
}

func (f fakeQuestions) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, q := range questions {
		q.ID = f.r.id()
		q.CreatedAt = time.Now()
		f.r.st.questions[q.ID] = *q
	}
	return nil
}

func (f fakeQuestions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	q, ok := f.r.st.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &q, nil
}

func (f fakeQuestions) Update(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.questions[q.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.st.questions[q.ID] = *q
	return nil
}

func (f fakeQuestions) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.st.questions, id)
	return nil
}

func (f fakeQuestions) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	questions := []*models.Question{}
	for _, q := range f.r.st.questions {
		if q.ExamID == examID {
			q := q
			questions = append(questions, &q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}

func (f fakeQuestions) CountByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	questions, _ := f.GetByExam(ctx, tx, examID)
	return int64(len(questions)), nil
}

func (f fakeQuestions) MaxOrder(ctx context.Context, tx *gorm.DB, examID uint) (int, error) {
	questions, _ := f.GetByExam(ctx, tx, examID)
	if len(questions) == 0 {
		return -1, nil
	}
	return questions[len(questions)-1].Order, nil
}

// ===== ATTEMPTS =====

type fakeAttempts struct{ r *fakeRepo }

func (f fakeAttempts) Create(ctx context.Context, tx *gorm.DB, a *models.ExamAttempt) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	a.ID = f.r.id()
	a.CreatedAt = time.Now()
	stored := *a
	stored.Answers = nil
	f.r.st.attempts[a.ID] = stored
	return nil
}

func (f fakeAttempts) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	a, ok := f.r.st.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (f fakeAttempts) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	a, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	answers, _ := fakeAnswers(f).GetByAttempt(ctx, tx, id)
	for _, ans := range answers {
		a.Answers = append(a.Answers, *ans)
	}
	return a, nil
}

func (f fakeAttempts) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	return f.GetByID(ctx, tx, id)
}

func (f fakeAttempts) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.attempts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.st.attempts, id)
	for ansID, ans := range f.r.st.answers {
		if ans.AttemptID == id {
			delete(f.r.st.answers, ansID)
		}
	}
	return nil
}

func (f fakeAttempts) ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters repositories.AttemptFilters) ([]*models.ExamAttempt, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	attempts := []*models.ExamAttempt{}
	for _, a := range f.r.st.attempts {
		if a.ExamID != examID {
			continue
		}
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		a := a
		attempts = append(attempts, &a)
	}
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].ID < attempts[j].ID })
	return paginate(attempts, filters.Offset, filters.Limit), nil
}

func (f fakeAttempts) Complete(ctx context.Context, tx *gorm.DB, a *models.ExamAttempt) (bool, error) {
	if f.r.completeHook != nil && !f.r.completeHook(a.ID) {
		return false, nil
	}

	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	stored, ok := f.r.st.attempts[a.ID]
	if !ok || stored.Status != models.AttemptInProgress {
		return false, nil
	}
	stored.Status = models.AttemptCompleted
	stored.Score = a.Score
	stored.Percentage = a.Percentage
	stored.Passed = a.Passed
	stored.CompletedAt = a.CompletedAt
	f.r.st.attempts[a.ID] = stored
	return true, nil
}

// ===== ANSWERS =====

type fakeAnswers struct{ r *fakeRepo }

func (f fakeAnswers) CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, a := range answers {
		a.ID = f.r.id()
		a.CreatedAt = time.Now()
		f.r.st.answers[a.ID] = *a
	}
	return nil
}

func (f fakeAnswers) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	answers := []*models.Answer{}
	for _, a := range f.r.st.answers {
		if a.AttemptID == attemptID {
			a := a
			answers = append(answers, &a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers, nil
}

// ===== FOLDERS AND FILES =====

type fakeFolders struct{ r *fakeRepo }

func (f fakeFolders) Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	folder.ID = f.r.id()
	f.r.st.folders[folder.ID] = *folder
	return nil
}

func (f fakeFolders) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Folder, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	folder, ok := f.r.st.folders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.fillCounts(&folder)
	return &folder, nil
}

func (f fakeFolders) fillCounts(folder *models.Folder) {
	folder.ExamsCount, folder.FilesCount = 0, 0
	for _, e := range f.r.st.exams {
		if e.FolderID != nil && *e.FolderID == folder.ID {
			folder.ExamsCount++
		}
	}
	for _, file := range f.r.st.files {
		if file.FolderID != nil && *file.FolderID == folder.ID {
			folder.FilesCount++
		}
	}
}

func (f fakeFolders) List(ctx context.Context, tx *gorm.DB, filters repositories.FolderFilters) ([]*models.Folder, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var folders []*models.Folder
	for _, folder := range f.r.st.folders {
		folder := folder
		f.fillCounts(&folder)
		folders = append(folders, &folder)
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return paginate(folders, filters.Offset, filters.Limit), int64(len(folders)), nil
}

func (f fakeFolders) Update(ctx context.Context, tx *gorm.DB, folder *models.Folder) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.folders[folder.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.r.st.folders[folder.ID] = *folder
	return nil
}

func (f fakeFolders) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.folders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.st.folders, id)
	return nil
}

type fakeFiles struct{ r *fakeRepo }

func (f fakeFiles) Create(ctx context.Context, tx *gorm.DB, file *models.File) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	file.ID = f.r.id()
	f.r.st.files[file.ID] = *file
	return nil
}

func (f fakeFiles) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.File, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	file, ok := f.r.st.files[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &file, nil
}

func (f fakeFiles) List(ctx context.Context, tx *gorm.DB, filters repositories.FileFilters) ([]*models.File, int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var files []*models.File
	for _, file := range f.r.st.files {
		if filters.FolderID != nil && (file.FolderID == nil || *file.FolderID != *filters.FolderID) {
			continue
		}
		file := file
		files = append(files, &file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return paginate(files, filters.Offset, filters.Limit), int64(len(files)), nil
}

func (f fakeFiles) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.st.files[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.st.files, id)
	return nil
}

func (f fakeFiles) DetachFolder(ctx context.Context, tx *gorm.DB, folderID uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for id, file := range f.r.st.files {
		if file.FolderID != nil && *file.FolderID == folderID {
			file.FolderID = nil
			f.r.st.files[id] = file
		}
	}
	return nil
}

// ===== DASHBOARD =====

type fakeDashboard struct{ r *fakeRepo }

func (f fakeDashboard) CountExams(ctx context.Context, tx *gorm.DB, published *bool) (int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var n int64
	for _, e := range f.r.st.exams {
		if published == nil || e.IsPublished == *published {
			n++
		}
	}
	return n, nil
}

func (f fakeDashboard) CountFolders(ctx context.Context, tx *gorm.DB) (int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return int64(len(f.r.st.folders)), nil
}

func (f fakeDashboard) CountFiles(ctx context.Context, tx *gorm.DB) (int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return int64(len(f.r.st.files)), nil
}

func (f fakeDashboard) CountAttempts(ctx context.Context, tx *gorm.DB, status *models.AttemptStatus) (int64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var n int64
	for _, a := range f.r.st.attempts {
		if status == nil || a.Status == *status {
			n++
		}
	}
	return n, nil
}

func (f fakeDashboard) AverageCompletedPercentage(ctx context.Context, tx *gorm.DB) (float64, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	var sum float64
	var n int
	for _, a := range f.r.st.attempts {
		if a.Status == models.AttemptCompleted && a.Percentage != nil {
			sum += *a.Percentage
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}
