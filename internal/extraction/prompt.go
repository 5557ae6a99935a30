package extraction

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/examhub/exam-service/internal/models"
)

const systemPrompt = "You write exam questions in Vietnamese from study material. " +
	"Reply with a single JSON object of the form {\"questions\": [...]} and nothing else."

var typeInstructions = map[models.QuestionType]string{
	models.MultipleChoice: `Tạo câu hỏi trắc nghiệm với 4 phương án A, B, C, D.
Mỗi câu hỏi có: question_text, options (mảng 4 phương án ["A. ...", "B. ...", "C. ...", "D. ..."]), correct_answer (A, B, C hoặc D), explanation.`,
	models.TrueFalse: `Tạo câu hỏi đúng/sai.
Mỗi câu hỏi có: question_text, options ["Đúng", "Sai"], correct_answer ("Đúng" hoặc "Sai"), explanation.`,
	models.ShortAnswer: `Tạo câu hỏi trả lời ngắn.
Mỗi câu hỏi có: question_text, correct_answer (đáp án ngắn gọn), explanation.`,
	models.Essay: `Tạo câu hỏi tự luận.
Mỗi câu hỏi có: question_text, explanation (hướng dẫn chấm điểm).`,
}

func buildPrompt(text string, questionType models.QuestionType, count int, difficulty models.DifficultyLevel) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Dựa trên nội dung sau, hãy tạo %d câu hỏi loại %s bằng tiếng Việt.\n", count, questionType))
	sb.WriteString(fmt.Sprintf("Độ khó: %s\n\n", difficulty))
	sb.WriteString(typeInstructions[questionType] + "\n\n")
	sb.WriteString("Yêu cầu:\n")
	sb.WriteString("- Câu hỏi phải liên quan trực tiếp đến nội dung được cung cấp\n")
	sb.WriteString(fmt.Sprintf("- marks: %g\n", DefaultMarks(questionType)))
	sb.WriteString(fmt.Sprintf("- question_type: %q\n\n", questionType))
	sb.WriteString("Nội dung:\n")
	sb.WriteString(truncateRunes(text, maxPromptText))
	return sb.String()
}

// truncateRunes cuts s to at most n characters without splitting a UTF-8 sequence
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
