package extraction

import (
	"fmt"

	"github.com/examhub/exam-service/internal/models"
)

const previewLength = 100

// Fallback builds count placeholder drafts of questionType from a preview of text.
// The output depends only on its arguments.
func Fallback(text string, questionType models.QuestionType, count int, difficulty models.DifficultyLevel) []QuestionDraft {
	preview := truncateRunes(text, previewLength)
	short := truncateRunes(preview, 50)

	drafts := make([]QuestionDraft, 0, count)
	for i := 1; i <= count; i++ {
		d := QuestionDraft{
			QuestionType: questionType,
			Marks:        DefaultMarks(questionType),
			Difficulty:   difficulty,
		}

		switch questionType {
		case models.MultipleChoice:
			d.QuestionText = fmt.Sprintf("Câu hỏi trắc nghiệm %d từ nội dung: %s...", i, preview)
			d.Options = []string{
				fmt.Sprintf("A. Phương án A cho câu %d", i),
				fmt.Sprintf("B. Phương án B cho câu %d", i),
				fmt.Sprintf("C. Phương án C cho câu %d", i),
				fmt.Sprintf("D. Phương án D cho câu %d", i),
			}
			d.CorrectAnswer = strPtr("A")
			d.Explanation = fmt.Sprintf("Giải thích cho câu hỏi %d", i)
		case models.TrueFalse:
			d.QuestionText = fmt.Sprintf("Phát biểu %d: %s... là đúng hay sai?", i, short)
			d.Options = []string{"Đúng", "Sai"}
			d.CorrectAnswer = strPtr("Đúng")
			d.Explanation = fmt.Sprintf("Giải thích tại sao phát biểu %d là đúng", i)
		case models.ShortAnswer:
			d.QuestionText = fmt.Sprintf("Trả lời ngắn %d: %s...?", i, short)
			d.CorrectAnswer = strPtr(fmt.Sprintf("Đáp án cho câu hỏi %d", i))
			d.Explanation = fmt.Sprintf("Giải thích đáp án cho câu hỏi %d", i)
		default:
			d.QuestionText = fmt.Sprintf("Thảo luận %d về: %s...", i, short)
			d.Explanation = fmt.Sprintf("Hướng dẫn chấm điểm cho bài tự luận %d", i)
		}

		drafts = append(drafts, d)
	}
	return drafts
}

func strPtr(s string) *string { return &s }
