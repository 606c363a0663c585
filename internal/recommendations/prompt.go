package recommendations

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"resume-tailor/resume/model"
)

// MinPromptLineLength is the UTF-16 length a fragment must exceed to be sent to the model.
// Shorter fragments keep their line number but are left out of the prompt.
const MinPromptLineLength = 25

const promptTemplate = `You are the backend for a saas tool to help fine tune resumes for job descriptions. The user will upload a docx file and receive your recommendations which will be inserted into the docx file.

Please generate recommendations to improve this resume.
Consider ATS software and matching keywords or removing irrelevant skills that do not appear in the resume.
Do not change employment dates or job titles or section headers.
Do not add new sections. Only consider content changes.
Do not reformat sections.
Do not change tools used in an achievement, the rewording must not lie.
Do not excessively summarize sentences.
Do not mention line numbers in recommendation text.
Focus on rewording achievements to job terms used in the job description without changing original meaning.
For each line given, alter the text to better match the job description.
Match punctuation of the original line. Lines that do not end in a period should not be altered to have a period.
Only include changes that are significant improvement to the line. Do not include slight rewordings.
'Rationale' should indicate how the change helps match the resume to the job description.
The rationale must quote exact words mentioned in the job description. Do not hallucinate.

'Text' is the new text that will be inserted into the resume.
If no changes are necessary for a line, leave the text blank.

Respond with a single JSON object and nothing else, using exactly this shape:
{"recommendations":[{"lineNum":<int>,"text":"<string>","rationale":"<string>"}]}
'lineNum' must be the number shown after "Line" for the line being replaced.

START JOB DESCRIPTION:

%s

END JOB DESCRIPTION

START RESUME:

%s

END RESUME
`

const notesTemplate = `
ADDITIONAL USER NOTES:

%s

END ADDITIONAL USER NOTES
`

// BuildPrompt renders the generation prompt for a resume.
func BuildPrompt(jobDescription, userNotes string, parts []model.ResumePart) string {
	prompt := fmt.Sprintf(promptTemplate, jobDescription, ResumeText(parts))
	if strings.TrimSpace(userNotes) != "" {
		prompt += fmt.Sprintf(notesTemplate, userNotes)
	}
	return prompt
}

// ResumeText renders the prompt-eligible fragments as numbered lines.
func ResumeText(parts []model.ResumePart) string {
	var b strings.Builder
	for _, p := range parts {
		if textLength(p.Text) <= MinPromptLineLength {
			continue
		}
		fmt.Fprintf(&b, " Line %d: %s \n", p.LineNumber, p.Text)
	}
	return b.String()
}

// textLength counts UTF-16 code units, so characters outside the BMP count twice.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += max(utf16.RuneLen(r), 1)
	}
	return n
}
