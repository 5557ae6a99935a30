package models

type ExamCreateRequest struct {
	Title        string                  `json:"title" validate:"required,min=1,max=255"`
	Description  *string                 `json:"description"`
	Duration     *int                    `json:"duration" validate:"omitempty,min=1"`
	TotalMarks   float64                 `json:"total_marks" validate:"min=0"`
	PassingMarks float64                 `json:"passing_marks" validate:"min=0"`
	IsPublished  bool                    `json:"is_published"`
	FolderID     *uint                   `json:"folder_id"`
	Questions    []QuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

type ExamUpdateRequest struct {
	Title        *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string  `json:"description"`
	Duration     *int     `json:"duration" validate:"omitempty,min=1"`
	TotalMarks   *float64 `json:"total_marks" validate:"omitempty,min=0"`
	PassingMarks *float64 `json:"passing_marks" validate:"omitempty,min=0"`
	IsPublished  *bool    `json:"is_published"`
	FolderID     *uint    `json:"folder_id"`
}

type QuestionCreateRequest struct {
	QuestionText  string       `json:"question_text" validate:"required,min=1"`
	QuestionType  QuestionType `json:"question_type" validate:"required,question_type"`
	Marks         *float64     `json:"marks" validate:"omitempty,min=0"`
	Order         int          `json:"order" validate:"min=0"`
	Options       []string     `json:"options"`
	CorrectAnswer *string      `json:"correct_answer"`
}

// MarksOrDefault returns the requested marks, or 1 when omitted.
func (r *QuestionCreateRequest) MarksOrDefault() float64 {
	if r.Marks == nil {
		return 1
	}
	return *r.Marks
}

type QuestionUpdateRequest struct {
	QuestionText  *string       `json:"question_text" validate:"omitempty,min=1"`
	QuestionType  *QuestionType `json:"question_type" validate:"omitempty,question_type"`
	Marks         *float64      `json:"marks" validate:"omitempty,min=0"`
	Order         *int          `json:"order" validate:"omitempty,min=0"`
	Options       []string      `json:"options"`
	CorrectAnswer *string       `json:"correct_answer"`
}

type FolderCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	Color       string  `json:"color" validate:"omitempty,hex_color"`
}

type FolderUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,hex_color"`
}

// PublicExam is the test-taker view of a published exam.
type PublicExam struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Duration    *int             `json:"duration"`
	TotalMarks  float64          `json:"total_marks"`
	Questions   []PublicQuestion `json:"questions"`
}

func (e *Exam) Public() PublicExam {
	questions := make([]PublicQuestion, 0, len(e.Questions))
	for i := range e.Questions {
		questions = append(questions, e.Questions[i].Public())
	}
	return PublicExam{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Duration:    e.Duration,
		TotalMarks:  e.TotalMarks,
		Questions:   questions,
	}
}

type DashboardStats struct {
	TotalExams        int64   `json:"total_exams"`
	PublishedExams    int64   `json:"published_exams"`
	DraftExams        int64   `json:"draft_exams"`
	TotalFolders      int64   `json:"total_folders"`
	TotalFiles        int64   `json:"total_files"`
	TotalAttempts     int64   `json:"total_attempts"`
	CompletedAttempts int64   `json:"completed_attempts"`
	AveragePercentage float64 `json:"average_percentage"`
}
