package chatbot

import "strings"

// topic is an answer book entry, chosen when the question contains any keyword
type topic struct {
	keywords []string
	answer   string
}

// Fallback answers message from the answer book. Topics are checked in order
// and the first match wins.
func Fallback(message string) string {
	lower := strings.ToLower(message)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				return t.answer
			}
		}
	}
	return defaultAnswer
}

var topics = []topic{
	{
		keywords: []string{"create exam", "make exam", "new exam", "add exam"},
		answer: `To create an exam:

1. **Create a folder** (optional):
   - POST ` + "`/api/v1/folders`" + ` with name, description and color

2. **Create the exam**:
   - POST ` + "`/api/v1/exams`" + `
   - Include title, description, duration, total_marks and passing_marks
   - Leave ` + "`is_published: false`" + ` while drafting
   - Optionally include a questions array

3. **Add questions**:
   - POST ` + "`/api/v1/exams/{id}/questions`" + `, or ` + "`/questions/batch`" + ` for several
   - question_type is one of "mcq", "true_false", "short_answer" or "essay"

4. **Publish the exam**:
   - PUT ` + "`/api/v1/exams/{id}`" + ` with ` + "`{\"is_published\": true}`",
	},
	{
		keywords: []string{"question type", "types of question", "mcq", "true false"},
		answer: `Exam Hub supports 4 question types:

1. **MCQ** (mcq): options list, graded by exact match with correct_answer
2. **True/False** (true_false): graded by exact match
3. **Short Answer** (short_answer): awards full marks for any non-empty answer
4. **Essay** (essay): awards full marks for any non-empty answer

Matching ignores case and surrounding whitespace. Questions without a
correct_answer never score.`,
	},
	{
		keywords: []string{"take exam", "start exam", "attempt exam", "do exam"},
		answer: `To take an exam:

1. **Find a published exam**: GET ` + "`/api/v1/exams?is_published=true`" + `
2. **Start an attempt**: POST ` + "`/api/v1/exams/{id}/attempts`" + ` with student_name and student_email
3. **Read the questions**: GET ` + "`/api/v1/exams/{id}/public`" + ` (correct answers are hidden)
4. **Submit answers**: POST ` + "`/api/v1/attempts/{attempt_id}/submit`" + `
   ` + "`{\"answers\": [{\"question_id\": 1, \"answer_text\": \"Paris\"}]}`" + `

The submit response carries score, percentage and passed.`,
	},
	{
		keywords: []string{"grade", "grading", "score", "scoring", "marks"},
		answer: `Grading in Exam Hub:

- **MCQ and True/False**: case-insensitive exact match with correct_answer
- **Short Answer and Essay**: full marks for any non-empty answer

**Score calculation**:
- Score is the sum of marks_obtained over all answers
- Percentage = score / total_marks x 100
- Passed when percentage >= passing_marks / total_marks x 100

**Results**: GET ` + "`/api/v1/attempts/{attempt_id}`" + ` shows is_correct and marks_obtained per question.`,
	},
	{
		keywords: []string{"folder", "organize", "category"},
		answer: `Folders organize exams and files:

- POST ` + "`/api/v1/folders`" + ` with name, description and color
- Set folder_id when creating or updating an exam
- Send folder_id as a form field when uploading a file
- GET ` + "`/api/v1/folders`" + ` lists folders with exam_count and file_count
- PUT and DELETE ` + "`/api/v1/folders/{id}`" + ` (deleting keeps the exams and files, unfiled)`,
	},
	{
		keywords: []string{"api", "endpoint", "route"},
		answer: `Main API endpoints (base path /api/v1):

**Exams**: POST/GET ` + "`/exams`" + `, GET/PUT/DELETE ` + "`/exams/{id}`" + `, GET ` + "`/exams/{id}/public`" + `
**Questions**: POST/GET ` + "`/exams/{id}/questions`" + `, PUT/DELETE ` + "`/exams/{id}/questions/{question_id}`" + `
**Attempts**: POST/GET ` + "`/exams/{id}/attempts`" + `, POST ` + "`/attempts/{id}/submit`" + `, GET/DELETE ` + "`/attempts/{id}`" + `
**Export**: GET ` + "`/exams/{id}/attempts/export`" + `
**Folders**: POST/GET ` + "`/folders`" + `, GET/PUT/DELETE ` + "`/folders/{id}`" + `
**Files**: POST/GET ` + "`/upload`" + `, GET/DELETE ` + "`/upload/{id}`" + `, POST ` + "`/upload/{id}/extract-questions`" + `
**Other**: GET ` + "`/dashboard/stats`" + `, POST ` + "`/chatbot/query`" + `, GET ` + "`/health`" + ` (outside /api/v1)`,
	},
	{
		keywords: []string{"dashboard", "statistics", "stats", "analytics"},
		answer: `GET ` + "`/api/v1/dashboard/stats`" + ` returns:

- total_exams, published_exams, draft_exams
- total_folders, total_files
- total_attempts, completed_attempts
- average_percentage over completed attempts

For a single exam use GET ` + "`/api/v1/exams/{id}/attempts`" + `.`,
	},
	{
		keywords: []string{"upload", "file", "document", "pdf"},
		answer: `File upload:

- POST ` + "`/api/v1/upload`" + ` as multipart/form-data with a file part and an optional folder_id field
- Supported formats include PDF, DOCX, TXT, MD and XLSX
- GET ` + "`/api/v1/upload?folder_id=1`" + ` lists files in a folder
- POST ` + "`/api/v1/upload/{id}/extract-questions`" + ` drafts questions from the document text`,
	},
	{
		keywords: []string{"error", "not working", "problem", "issue", "troubleshoot"},
		answer: `Common issues:

- **Cannot take exam**: the exam must be published (PUT ` + "`/api/v1/exams/{id}`" + ` with ` + "`{\"is_published\": true}`" + `)
- **Grading looks wrong**: MCQ and True/False compare the trimmed answer ignoring case
- **Upload rejected**: check the file extension and the size limit
- **404 errors**: the exam, folder, file or attempt id does not exist
- **Service not responding**: GET ` + "`/health`" + ` reports database connectivity`,
	},
	{
		keywords: []string{"publish", "unpublish", "draft"},
		answer: `Publishing exams:

- Only published exams can be attempted
- Publish: PUT ` + "`/api/v1/exams/{id}`" + ` with ` + "`{\"is_published\": true}`" + `
- Unpublish: the same call with ` + "`false`" + `
- The dashboard counts published_exams and draft_exams`,
	},
}

const defaultAnswer = `I'm here to help with Exam Hub! I can assist with:

- **Exam management**: creating, publishing and editing exams
- **Question types**: MCQ, True/False, Short Answer and Essay
- **Taking exams**: starting attempts, submitting answers and reading results
- **Organization**: folders and file uploads
- **Analytics**: dashboard statistics
- **API usage**: endpoints and request formats

Try asking "How do I create an exam?" or "How does grading work?"`
