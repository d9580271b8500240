package assist

import "fmt"

const (
	interviewerPrompt  = "Technical Interviewer"
	careerCoachPrompt  = "Career Coach"
	resumeWriterPrompt = "You are a professional resume writer."
)

func questionsQuery(jobDescription, resumeText string) string {
	return fmt.Sprintf("Job: %s Resume: %s Output HTML: 5 Technical, 3 Behavioral Questions.", jobDescription, resumeText)
}

func coverLetterQuery(jobDescription, resumeText string) string {
	return fmt.Sprintf("Write a cover letter for Job: %s using Resume: %s. HTML output.", jobDescription, resumeText)
}

func rewriteBulletQuery(bullet string) string {
	return fmt.Sprintf(`Rewrite this resume bullet point to be impactful, use action verbs, and include placeholder metrics.
ORIGINAL: "%s"
Provide 3 variations (Conservative, Aggressive, Concise) as HTML bullets.`, bullet)
}
