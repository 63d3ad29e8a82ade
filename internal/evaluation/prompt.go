package evaluation

import (
	"bytes"
	"text/template"
)

// promptData feeds promptTemplate.
type promptData struct {
	Passage   string
	Questions []string
	Answers   []string
}

var promptTemplate = template.Must(template.New("evaluation").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Below is an English reading passage and a student's answers to questions about it.
<passage>
{{.Passage}}
</passage>

<questions>
{{range $i, $q := .Questions}}{{inc $i}}. {{$q}}
{{end}}</questions>

<student_answers>
{{range $i, $a := .Answers}}Q{{inc $i}}: {{$a}}
{{end}}</student_answers>

Score the following three areas on a 0-100 scale and reply with JSON only:

1. reading_comprehension:
   - Did the student grasp the main idea of the passage?
   - Do the answers show understanding of the details?
   - Are examples from the passage used appropriately?

2. grammar:
   - Is the sentence structure correct?
   - Are tenses used accurately?
   - Are parts of speech used properly?

3. vocabulary:
   - Are the words well chosen?
   - Is there lexical variety?
   - Is advanced vocabulary used?

Reply with exactly this JSON object and nothing else:

{
  "reading_comprehension": <score 0-100>,
  "grammar": <score 0-100>,
  "vocabulary": <score 0-100>,
  "feedback": "<overall comment in Korean, 2-3 sentences>"
}`))

// buildPrompt renders the scoring prompt. The output depends only on its
// inputs.
func buildPrompt(passage string, questions, answers []string) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Passage:   passage,
		Questions: questions,
		Answers:   answers,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
