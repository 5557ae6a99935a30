// Package grading maps a submitted answer to correctness and marks.
package grading

import (
	"strings"

	"github.com/examhub/exam-service/internal/models"
)

// Result is the outcome of grading one answer.
type Result struct {
	IsCorrect     bool
	MarksObtained float64
}

type gradeFunc func(q *models.Question, answer string) Result

// graders holds one entry per question type. Adding a type to models.QuestionTypes
// without a grader here fails TestGradersCoverAllQuestionTypes.
var graders = map[models.QuestionType]gradeFunc{
	models.MultipleChoice: gradeExactMatch,
	models.TrueFalse:      gradeExactMatch,
	models.ShortAnswer:    gradeFullMarks,
	models.Essay:          gradeFullMarks,
}

// Grade scores an answer against a question. Questions without a reference answer
// (nil or only whitespace) and blank answers always score zero.
func Grade(q *models.Question, answerText *string) Result {
	if q == nil || !hasReference(q) || answerText == nil || *answerText == "" {
		return Result{}
	}

	grade, ok := graders[q.QuestionType]
	if !ok {
		return Result{}
	}
	return grade(q, *answerText)
}

func hasReference(q *models.Question) bool {
	return q.CorrectAnswer != nil && strings.TrimSpace(*q.CorrectAnswer) != ""
}

// HasGrader reports whether the question type is gradable.
func HasGrader(t models.QuestionType) bool {
	_, ok := graders[t]
	return ok
}

// gradeExactMatch compares trimmed, case-folded text. Synonyms and option indexes are not equal.
func gradeExactMatch(q *models.Question, answer string) Result {
	if normalize(answer) == normalize(*q.CorrectAnswer) {
		return Result{IsCorrect: true, MarksObtained: q.Marks}
	}
	return Result{}
}

// gradeFullMarks awards full marks to any non-empty answer. Free-text items are scored
// provisionally until reviewed by a person.
func gradeFullMarks(q *models.Question, _ string) Result {
	return Result{IsCorrect: true, MarksObtained: q.Marks}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
