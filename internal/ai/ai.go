// Package ai wraps the language-model flows: each one validates its input,
// fills a prompt template, makes a single completion call, and validates the
// output shape before returning it.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"hirejacks/server/internal/metrics"
)

var (
	// ErrUnavailable means no model is configured; callers surface it as a
	// temporary condition rather than a crash.
	ErrUnavailable = errors.New("ai model not configured")
	ErrValidation  = errors.New("invalid input")
	ErrBadOutput   = errors.New("model returned unusable output")
)

type Service struct {
	model llms.Model
}

func New(model llms.Model) *Service {
	return &Service{model: model}
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Service, error) {
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, err
	}
	return &Service{model: model}, nil
}

func (s *Service) generate(ctx context.Context, flow, prompt string) (string, error) {
	if s == nil || s.model == nil {
		return "", ErrUnavailable
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt)
	if err != nil {
		return "", err
	}
	metrics.AIGenerations.WithLabelValues(flow).Inc()
	return strings.TrimSpace(out), nil
}

type ResumeRefactorInput struct {
	ResumeText string `json:"resumeText"`
}

type ResumeRefactorOutput struct {
	ReformattedResume string `json:"reformattedResume"`
}

const resumeRefactorPrompt = `You are an AI resume expert. Please reformat the following resume into a professional, industry-standard template.

Resume:
%s

Ensure that the reformatted resume is well-structured, easy to read, and highlights the candidate's key skills and experiences. Pay particular attention to formatting and proper grammar.`

func (s *Service) ResumeRefactor(ctx context.Context, input ResumeRefactorInput) (ResumeRefactorOutput, error) {
	if strings.TrimSpace(input.ResumeText) == "" {
		return ResumeRefactorOutput{}, fmt.Errorf("%w: resumeText required", ErrValidation)
	}
	out, err := s.generate(ctx, "resume_refactor", fmt.Sprintf(resumeRefactorPrompt, input.ResumeText))
	if err != nil {
		return ResumeRefactorOutput{}, err
	}
	return ResumeRefactorOutput{ReformattedResume: out}, nil
}

type CoverLetterInput struct {
	JobTitle    string `json:"jobTitle"`
	ResumeText  string `json:"resumeText"`
	CompanyName string `json:"companyName,omitempty"`
}

type CoverLetterOutput struct {
	GeneratedCoverLetter string `json:"generatedCoverLetter"`
}

const coverLetterPrompt = `You are an AI career coach specializing in writing compelling cover letters.
A student is applying for the position of %s%s.

Using the provided resume, write a professional and engaging cover letter. The cover letter should:
1. Be addressed to a generic hiring manager.
2. Clearly state the position being applied for.
3. Highlight 2-3 key skills and experiences from the resume that are most relevant to the role.
4. Express enthusiasm for the opportunity.
5. Maintain a professional and confident tone.
6. Be concise and well-structured.

Resume to use as a reference:
%s`

func (s *Service) CoverLetter(ctx context.Context, input CoverLetterInput) (CoverLetterOutput, error) {
	if strings.TrimSpace(input.JobTitle) == "" {
		return CoverLetterOutput{}, fmt.Errorf("%w: jobTitle required", ErrValidation)
	}
	if strings.TrimSpace(input.ResumeText) == "" {
		return CoverLetterOutput{}, fmt.Errorf("%w: resumeText required", ErrValidation)
	}
	var at string
	if input.CompanyName != "" {
		at = " at " + input.CompanyName
	}
	out, err := s.generate(ctx, "cover_letter", fmt.Sprintf(coverLetterPrompt, input.JobTitle, at, input.ResumeText))
	if err != nil {
		return CoverLetterOutput{}, err
	}
	return CoverLetterOutput{GeneratedCoverLetter: out}, nil
}

type JobRecommendationsInput struct {
	ResumeText  string `json:"resumeText"`
	PastHistory string `json:"pastHistory,omitempty"`
}

type JobRecommendationsOutput struct {
	JobTitles []string `json:"jobTitles"`
	Reasoning string   `json:"reasoning"`
}

const jobRecommendationsPrompt = `You are an AI job recommendation agent. Based on the provided resume and past job search history, recommend relevant job titles.

Resume:
%s

Past Job Search History:
%s

Consider the skills and experience outlined in the resume. Explain why each job title is a good fit for the candidate.

Respond with JSON only, no markdown code blocks, matching exactly this schema:
{"jobTitles": ["title", ...], "reasoning": "why these fit"}`

func (s *Service) JobRecommendations(ctx context.Context, input JobRecommendationsInput) (JobRecommendationsOutput, error) {
	if strings.TrimSpace(input.ResumeText) == "" {
		return JobRecommendationsOutput{}, fmt.Errorf("%w: resumeText required", ErrValidation)
	}
	out, err := s.generate(ctx, "job_recommendations", fmt.Sprintf(jobRecommendationsPrompt, input.ResumeText, input.PastHistory))
	if err != nil {
		return JobRecommendationsOutput{}, err
	}
	var parsed JobRecommendationsOutput
	if err := json.Unmarshal([]byte(stripCodeFence(out)), &parsed); err != nil {
		return JobRecommendationsOutput{}, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}
	if len(parsed.JobTitles) == 0 || parsed.Reasoning == "" {
		return JobRecommendationsOutput{}, fmt.Errorf("%w: missing jobTitles or reasoning", ErrBadOutput)
	}
	return parsed, nil
}

type AssistantInput struct {
	Query string `json:"query"`
}

type AssistantOutput struct {
	Response string `json:"response"`
}

const assistantPrompt = `You are HireJacks Assistant, a friendly and helpful AI assistant for a job portal application named HireJacks.
Your purpose is to help users (who are students or admins) with their questions about the platform, job searching, resume building, and career advice.

Keep your answers concise and helpful.

Here is the user's query:
%s`

func (s *Service) Assistant(ctx context.Context, input AssistantInput) (AssistantOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return AssistantOutput{}, fmt.Errorf("%w: query required", ErrValidation)
	}
	out, err := s.generate(ctx, "assistant", fmt.Sprintf(assistantPrompt, input.Query))
	if err != nil {
		return AssistantOutput{}, err
	}
	return AssistantOutput{Response: out}, nil
}

// stripCodeFence unwraps a ```json ... ``` block if the model added one
// despite the JSON-only instruction.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
