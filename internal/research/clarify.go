package research

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/llm"
)

// AnswerSkipped is recorded for a question the user chose to skip. It is
// passed to the planner as-is so the model knows the question was declined.
const AnswerSkipped = "Answer skipped"

const maxClarifyQuestions = 3

// QueryAssessment rates how much a query would benefit from clarification.
type QueryAssessment struct {
	Complexity int    `json:"complexity" yaml:"complexity"` // 1 simple, 2 moderate, 3 complex
	Reasoning  string `json:"reasoning" yaml:"reasoning"`
}

// FollowUpQuestion is one question put to the user before planning.
type FollowUpQuestion struct {
	Question string `json:"question" yaml:"question"`
	Purpose  string `json:"purpose" yaml:"purpose"`
}

// ClarificationPlan is the clarifier's verdict on a query.
type ClarificationPlan struct {
	Assessment         QueryAssessment    `json:"assessment" yaml:"assessment"`
	Questions          []FollowUpQuestion `json:"questions" yaml:"questions"`
	ShouldAskQuestions bool               `json:"should_ask_questions" yaml:"should_ask_questions"`
}

// normalize clamps complexity, caps the question count and drops blank
// questions.
func (p *ClarificationPlan) normalize() {
	p.Assessment.Complexity = min(max(p.Assessment.Complexity, 1), 3)
	p.Assessment.Reasoning = strings.TrimSpace(p.Assessment.Reasoning)

	kept := p.Questions[:0]
	for _, q := range p.Questions {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" {
			continue
		}
		kept = append(kept, q)
	}
	if len(kept) > maxClarifyQuestions {
		kept = kept[:maxClarifyQuestions]
	}
	p.Questions = kept
	if len(p.Questions) == 0 {
		p.ShouldAskQuestions = false
	}
}

// Markdown renders the questions for display.
func (p *ClarificationPlan) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Query complexity level:** %d/3\n\n", p.Assessment.Complexity)
	if p.Assessment.Reasoning != "" {
		fmt.Fprintf(&b, "**Why clarification is requested:** %s\n\n", p.Assessment.Reasoning)
	}
	for i, q := range p.Questions {
		fmt.Fprintf(&b, "**Question %d:** %s\n", i+1, q.Question)
		if q.Purpose != "" {
			fmt.Fprintf(&b, "*%s*\n", q.Purpose)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// Answer pairs a follow-up question with the user's reply.
type Answer struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Clarification carries the user's response to a ClarificationPlan.
type Clarification struct {
	// Skipped is true when the user declined every question at once.
	Skipped bool
	// Answers are in question order.
	Answers []Answer
	// Plan is the assessment that produced the questions, when known.
	Plan *ClarificationPlan
}

// effectiveAnswers returns the answers the planner should see.
func (c *Clarification) effectiveAnswers() []Answer {
	if c == nil || c.Skipped {
		return nil
	}
	return c.Answers
}

// DisplayAnswer formats an answer for the progress log.
func DisplayAnswer(answer string) string {
	switch {
	case answer == AnswerSkipped:
		return "*[Skipped]*"
	case strings.TrimSpace(answer) == "":
		return "*[Left blank]*"
	default:
		return answer
	}
}

// BuildEnhancedQuery folds clarification answers into the planner input.
func BuildEnhancedQuery(query string, answers []Answer) string {
	if len(answers) == 0 {
		return "Query: " + query
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Original Query: %s\n\nAdditional Context from User:\n", query)
	for _, a := range answers {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", a.Question, a.Answer)
	}
	return b.String()
}

// AnswersFile is the on-disk form of a pending clarification. It is written
// when questions cannot be asked interactively and read back once the user
// has filled in the answers.
type AnswersFile struct {
	Query      string   `yaml:"query"`
	TraceID    string   `yaml:"trace_id,omitempty"`
	Searches   int      `yaml:"searches,omitempty"`
	Complexity int      `yaml:"complexity,omitempty"`
	Reasoning  string   `yaml:"reasoning,omitempty"`
	SkipAll    bool     `yaml:"skip_all"`
	Answers    []Answer `yaml:"answers"`
}

// NewAnswersFile builds a template with one blank answer per question.
func NewAnswersFile(query, traceID string, searches int, plan *ClarificationPlan) AnswersFile {
	f := AnswersFile{
		Query:      query,
		TraceID:    traceID,
		Searches:   searches,
		Complexity: plan.Assessment.Complexity,
		Reasoning:  plan.Assessment.Reasoning,
	}
	for _, q := range plan.Questions {
		f.Answers = append(f.Answers, Answer{Question: q.Question})
	}
	return f
}

// Marshal encodes the file as YAML.
func (f AnswersFile) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// ParseAnswersFile decodes a YAML answers file.
func ParseAnswersFile(data []byte) (AnswersFile, error) {
	var f AnswersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return AnswersFile{}, fmt.Errorf("parse answers file: %w", err)
	}
	if len(f.Answers) == 0 && !f.SkipAll {
		return AnswersFile{}, fmt.Errorf("answers file has no answers: %w", errors.ErrInvalidInput)
	}
	return f, nil
}

// Clarification converts the file back into a Clarification.
func (f AnswersFile) Clarification() *Clarification {
	c := &Clarification{Skipped: f.SkipAll, Answers: f.Answers}
	if f.Complexity > 0 || f.Reasoning != "" {
		c.Plan = &ClarificationPlan{
			Assessment:         QueryAssessment{Complexity: f.Complexity, Reasoning: f.Reasoning},
			ShouldAskQuestions: true,
		}
		for _, a := range f.Answers {
			c.Plan.Questions = append(c.Plan.Questions, FollowUpQuestion{Question: a.Question})
		}
	}
	return c
}

const clarifyInstructions = `You are a research query analyst. Assess how complex and how clear the user's query is, and decide whether follow-up questions would improve the research.

Complexity levels:
- Level 1 (simple): clear, specific and well scoped, e.g. "What is photosynthesis?"
- Level 2 (moderate): reasonable scope but would benefit from some clarification, e.g. "How does AI impact healthcare?"
- Level 3 (complex): broad, ambiguous or multi-faceted, e.g. "What should I know about climate change?"

Number of follow-up questions per level:
- Level 1: 1 question, only if needed
- Level 2: 1-2 questions
- Level 3: 2-3 questions

Good questions pin down the focus areas of interest, the audience or application, the time frame or geography, the depth required (overview or technical detail), and any perspectives the user wants covered.

Only suggest questions that would meaningfully improve the research. If the query is already clear and specific, set should_ask_questions to false.

Respond with a single JSON object and nothing else:
{"assessment": {"complexity": 1, "reasoning": "..."}, "questions": [{"question": "...", "purpose": "..."}], "should_ask_questions": false}`

// Clarifier decides whether a query needs follow-up questions.
type Clarifier struct {
	model llm.Provider
}

// NewClarifier creates a Clarifier backed by model.
func NewClarifier(model llm.Provider) *Clarifier {
	return &Clarifier{model: model}
}

// Assess rates query and proposes follow-up questions.
func (c *Clarifier) Assess(ctx context.Context, query string) (*ClarificationPlan, error) {
	resp, err := c.model.Generate(llm.WithCallName(ctx, "clarifier"), clarifyInstructions, "Query: "+query)
	if err != nil {
		return nil, err
	}

	var plan ClarificationPlan
	if err := llm.DecodeJSON(resp.Text, &plan); err != nil {
		return nil, err
	}
	plan.normalize()
	return &plan, nil
}
