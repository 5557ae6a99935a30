package services

import (
	"context"
	"io"

	"github.com/examhub/exam-service/internal/chatbot"
	"github.com/examhub/exam-service/internal/extraction"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
)

// ===== ATTEMPT RELATED DTOs =====

type StartAttemptRequest struct {
	StudentName  string  `json:"student_name" validate:"required,min=1,max=255"`
	StudentEmail *string `json:"student_email" validate:"omitempty,email,max=255"`
}

type AnswerSubmission struct {
	QuestionID uint    `json:"question_id"`
	AnswerText *string `json:"answer_text"`
}

// AttemptListItem is an attempt as listed under its exam
type AttemptListItem struct {
	*models.ExamAttempt
	ExamTitle  string  `json:"exam_title"`
	TotalMarks float64 `json:"total_marks"`
}

type SubmitAttemptRequest struct {
	Answers []AnswerSubmission `json:"answers" validate:"dive"`
}

// AttemptReusePolicy decides which in-progress attempt a start call may hand back
type AttemptReusePolicy string

const (
	// ReuseAnyInExam returns any in-progress attempt for the exam
	ReuseAnyInExam AttemptReusePolicy = "exam"
	// ReuseSameStudent returns only an in-progress attempt with the same name and email
	ReuseSameStudent AttemptReusePolicy = "student"
)

// ===== EXAM RELATED DTOs =====

type ExamListResponse struct {
	Exams []*models.Exam `json:"exams"`
	Total int64          `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

type FolderListResponse struct {
	Folders []*models.Folder `json:"folders"`
	Total   int64            `json:"total"`
}

type FileListResponse struct {
	Files []*models.File `json:"files"`
	Total int64          `json:"total"`
}

// ===== UPLOAD RELATED DTOs =====

type UploadFileRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
	FolderID    *uint
}

type ExtractQuestionsRequest struct {
	QuestionType models.QuestionType    `json:"question_type" validate:"required,question_type"`
	NumQuestions int                    `json:"num_questions" validate:"min=1,max=50"`
	Difficulty   models.DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	// ExamID saves the drafts into the exam when set
	ExamID *uint `json:"exam_id"`
}

type ExtractQuestionsResponse struct {
	FileID    uint                       `json:"file_id"`
	Questions []extraction.QuestionDraft `json:"questions"`
	Fallback  bool                       `json:"fallback"`
	Saved     []*models.Question         `json:"saved,omitempty"`
}

// ===== CHATBOT RELATED DTOs =====

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"max=4000"`
}

type ChatbotQueryRequest struct {
	Message             string        `json:"message" validate:"required,max=4000"`
	ConversationHistory []ChatMessage `json:"conversation_history" validate:"max=50,dive"`
}

type ChatbotQueryResponse struct {
	Response string `json:"response"`
	Fallback bool   `json:"fallback"`
}

// ChatbotContextResponse exposes the instruction given to the model
type ChatbotContextResponse struct {
	Context   string `json:"context"`
	Length    int    `json:"length"`
	Available bool   `json:"available"`
	AIEnabled bool   `json:"ai_enabled"`
}

// ===== SERVICE INTERFACES =====

type ExamService interface {
	Create(ctx context.Context, req *models.ExamCreateRequest) (*models.Exam, error)
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetPublic(ctx context.Context, id uint) (*models.PublicExam, error)
	List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error)
	Update(ctx context.Context, id uint, req *models.ExamUpdateRequest) (*models.Exam, error)
	Delete(ctx context.Context, id uint) error

	// Question management
	AddQuestion(ctx context.Context, examID uint, req *models.QuestionCreateRequest) (*models.Question, error)
	AddQuestions(ctx context.Context, examID uint, reqs []models.QuestionCreateRequest) ([]*models.Question, error)
	ListQuestions(ctx context.Context, examID uint) ([]*models.Question, error)
	UpdateQuestion(ctx context.Context, examID, questionID uint, req *models.QuestionUpdateRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, examID, questionID uint) error
}

// AttemptService drives the attempt lifecycle: start, submit and grade
type AttemptService interface {
	Start(ctx context.Context, examID uint, req *StartAttemptRequest) (*models.ExamAttempt, error)
	Submit(ctx context.Context, attemptID uint, req *SubmitAttemptRequest) (*models.ExamAttempt, error)
	GetByID(ctx context.Context, attemptID uint) (*models.ExamAttempt, error)
	ListByExam(ctx context.Context, examID uint, skip, limit int) ([]*AttemptListItem, error)
	Delete(ctx context.Context, attemptID uint) error
}

type FolderService interface {
	Create(ctx context.Context, req *models.FolderCreateRequest) (*models.Folder, error)
	GetByID(ctx context.Context, id uint) (*models.Folder, error)
	List(ctx context.Context, skip, limit int) (*FolderListResponse, error)
	Update(ctx context.Context, id uint, req *models.FolderUpdateRequest) (*models.Folder, error)
	Delete(ctx context.Context, id uint) error
}

type UploadService interface {
	Upload(ctx context.Context, req *UploadFileRequest) (*models.File, error)
	GetByID(ctx context.Context, id uint) (*models.File, error)
	List(ctx context.Context, filters repositories.FileFilters) (*FileListResponse, error)
	Delete(ctx context.Context, id uint) error
	ExtractQuestions(ctx context.Context, fileID uint, req *ExtractQuestionsRequest) (*ExtractQuestionsResponse, error)
}

type DashboardService interface {
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

// ExportService moves exam data in and out of spreadsheets
type ExportService interface {
	ExportAttempts(ctx context.Context, examID uint, w io.Writer) error
	ImportQuestions(ctx context.Context, examID uint, r io.Reader) ([]*models.Question, error)
}

// QuestionExtractor turns document text into question drafts
type QuestionExtractor interface {
	ExtractQuestions(ctx context.Context, text string, questionType models.QuestionType, count int, difficulty models.DifficultyLevel) extraction.Result
}

// ChatResponder produces assistant replies
type ChatResponder interface {
	Reply(ctx context.Context, message string, history []chatbot.Message) chatbot.Result
	Enabled() bool
}

// ChatbotService answers usage questions about the service
type ChatbotService interface {
	Query(ctx context.Context, req *ChatbotQueryRequest) (*ChatbotQueryResponse, error)
	Context(ctx context.Context) *ChatbotContextResponse
}

type ServiceManager interface {
	// Core service getters
	Exam() ExamService
	Attempt() AttemptService
	Folder() FolderService
	Upload() UploadService
	Dashboard() DashboardService
	Export() ExportService
	Chatbot() ChatbotService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
