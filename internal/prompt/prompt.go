// Package prompt assembles the requests sent to the model for the transform
// and analysis stages.
package prompt

import (
	"fmt"
	"strings"

	"codemorph/internal/goal"
	"codemorph/internal/language"
)

const baseInstruction = `You are CodeMorph AI, an expert software engineer specializing in code analysis and transformation. Your goal is to rewrite the user's code based on their selected optimization goals. You must follow these rules strictly:
1. Maintain Original Functionality: The transformed code must behave identically to the original.
2. Minimal Necessary Changes: Only modify the code to meet the specified goals. Do not refactor unrelated parts.
3. Inline Comments: Add concise comments starting with ` + "`// CodeMorph AI:`" + ` (for JS/TS/Go/Java) or ` + "`# CodeMorph AI:`" + ` (for Python) to explain significant changes.
4. Modern Best Practices: Ensure the final code adheres to modern standards for the given language.
5. Output Format: Respond ONLY with the complete, transformed code block. Do not include any explanatory text, greetings, or markdown fences before or after the code.

Based on the user's selected goals, apply the following specific transformations:`

var details = map[goal.Goal]string{
	goal.PerformanceBoost: `
- **Performance Boost:** Prioritize algorithmic efficiency (e.g., using maps for O(1) lookups). In React, apply memoization (` + "`React.memo`, `useMemo`, `useCallback`" + `) to prevent needless re-renders. Implement lazy loading for components and assets where appropriate. Optimize loops and data processing tasks.`,
	goal.SecurityHardening: `
- **Security Hardening:** Sanitize all user-provided data to prevent XSS attacks. Use parameterized queries or ORMs to eliminate SQL injection risks. Implement proper validation on both client and server sides. Check for insecure direct object references. Do not expose sensitive data in error messages.`,
	goal.Accessibility: `
- **Accessibility:** Ensure the code adheres to WCAG 2.1 AA standards. Add appropriate ARIA attributes to components. All interactive elements must be keyboard accessible and have visible focus states. Use semantic HTML. Ensure text has sufficient color contrast.`,
	goal.MobileFirst: `
- **Mobile-First:** Refactor styles to be mobile-first. Use responsive units and CSS grid/flexbox for fluid layouts. Ensure touch targets are adequately sized (at least 44x44px). Optimize images for various screen sizes.`,
	goal.ModernStack: `
- **Modern Stack:** Update code to use modern language features (e.g., ES6+ in JavaScript like async/await, let/const, arrow functions). In React, refactor class components to functional components with Hooks where it makes sense. Replace deprecated library methods with their modern equivalents.`,
	goal.BestPractices: `
- **Best Practices:** Focus on code readability and maintainability. Decompose large functions into smaller, pure functions with single responsibilities. Use descriptive variable and function names. Remove commented-out or dead code. Ensure consistent code formatting.`,
}

// Detail returns the instruction paragraph for g, if one exists.
func Detail(g goal.Goal) (string, bool) {
	d, ok := details[g]
	return d, ok
}

// Transform is the request for the rewrite stage.
type Transform struct {
	SystemInstruction string
	UserPrompt        string
}

// SystemInstruction joins the base rules with one paragraph per selected goal.
// Repeated goals are included once; goals without a paragraph add nothing.
func SystemInstruction(goals []goal.Goal) string {
	var b strings.Builder
	for _, g := range goal.Dedup(goals) {
		if d, ok := details[g]; ok {
			b.WriteString(d)
		}
	}
	return baseInstruction + "\n" + b.String()
}

// BuildTransform builds the rewrite request. Callers must ensure goals and code
// are non-empty.
func BuildTransform(goals []goal.Goal, lang language.Tag, code string) Transform {
	user := fmt.Sprintf("Language: %s. Transformation Goals: %s.\nPlease transform the following code:\n%s",
		lang, strings.Join(goal.IDs(goals), ", "), fence(lang, code))
	return Transform{
		SystemInstruction: SystemInstruction(goals),
		UserPrompt:        user,
	}
}

// BuildAnalysis builds the diff-analysis request.
func BuildAnalysis(original, transformed string, lang language.Tag) string {
	var b strings.Builder
	b.WriteString("Analyze the differences between the original and transformed code. Provide a summary of improvements.\n")
	fmt.Fprintf(&b, "Original Code (%s):\n%s\n\n", lang, fence(lang, original))
	fmt.Fprintf(&b, "Transformed Code (%s):\n%s\n\n", lang, fence(lang, transformed))
	b.WriteString("Based on the changes, provide an educated estimate for the stats: performance, issuesFixed, bundleSize and qualityGrade, each with a value and a short description. ")
	b.WriteString("The quality grade should be based on the improvements. ")
	b.WriteString("List the detailed changes, each with an icon and a description, and finish with a plain-language explanation.\n")
	return b.String()
}

func fence(lang language.Tag, code string) string {
	return "```" + string(lang) + "\n" + code + "\n```"
}
