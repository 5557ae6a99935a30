package validator

import (
	"fmt"
	"strings"

	"github.com/examhub/exam-service/internal/models"
)

// ValidateExamCreate validates an exam creation request including its questions
func (v *Validator) ValidateExamCreate(req *models.ExamCreateRequest) error {
	errs := v.structErrors(req)

	errs = append(errs, validateMarks(req.TotalMarks, req.PassingMarks)...)
	for i := range req.Questions {
		q := &req.Questions[i]
		for _, e := range validateQuestionContent(q.QuestionType, q.Options) {
			e.Field = fmt.Sprintf("questions[%d].%s", i, e.Field)
			errs = append(errs, e)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateExamUpdate validates an update against the stored exam
func (v *Validator) ValidateExamUpdate(req *models.ExamUpdateRequest, existing *models.Exam) error {
	errs := v.structErrors(req)

	total, passing := existing.TotalMarks, existing.PassingMarks
	if req.TotalMarks != nil {
		total = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		passing = *req.PassingMarks
	}
	errs = append(errs, validateMarks(total, passing)...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateQuestion validates the final state of a question
func (v *Validator) ValidateQuestion(q *models.Question) error {
	var errs ValidationErrors
	if strings.TrimSpace(q.QuestionText) == "" {
		errs = append(errs, ValidationError{Field: "question_text", Message: "is required", Rule: "required"})
	}
	if !q.QuestionType.IsValid() {
		errs = append(errs, ValidationError{Field: "question_type", Message: "must be one of mcq, true_false, short_answer, essay", Value: q.QuestionType, Rule: "question_type"})
	}
	if q.Marks < 0 {
		errs = append(errs, ValidationError{Field: "marks", Message: "must be at least 0", Value: q.Marks, Rule: "min"})
	}
	if q.Order < 0 {
		errs = append(errs, ValidationError{Field: "order", Message: "must be at least 0", Value: q.Order, Rule: "min"})
	}
	errs = append(errs, validateQuestionContent(q.QuestionType, q.Options)...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateMarks(total, passing float64) ValidationErrors {
	if passing > total {
		return ValidationErrors{{
			Field:   "passing_marks",
			Message: "cannot exceed total_marks",
			Value:   passing,
			Rule:    "business_logic",
		}}
	}
	return nil
}

// validateQuestionContent checks type-specific content. Multiple choice needs at least two
// non-empty options.
func validateQuestionContent(qt models.QuestionType, options []string) ValidationErrors {
	if qt != models.MultipleChoice {
		return nil
	}

	nonEmpty := 0
	for _, opt := range options {
		if strings.TrimSpace(opt) != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return ValidationErrors{{
			Field:   "options",
			Message: "multiple choice questions need at least two options",
			Value:   len(options),
			Rule:    "business_logic",
		}}
	}
	return nil
}
