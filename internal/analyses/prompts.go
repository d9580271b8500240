package analyses

import "fmt"

const analysisSystemPrompt = "You are an expert ATS. Analyze the resume against the job description."

func buildAnalysisQuery(jobDescription, resumeText string) string {
	return fmt.Sprintf(`**JOB DESCRIPTION:** %s
**RESUME:** %s

Output a JSON object with these 4 keys:
1. "match_score": An integer (0-100) representing the match percentage.
2. "analysis_markdown": A structured summary with Key Strengths and Suggestions.
3. "matched_keywords": List of matching skills found in resume, spelled exactly as they appear in the resume.
4. "missing_keywords": List of important keywords missing from resume.`, jobDescription, resumeText)
}
