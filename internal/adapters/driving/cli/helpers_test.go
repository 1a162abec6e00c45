package cli

import (
	"context"
	"time"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// mockProjectService implements driving.ProjectService.
type mockProjectService struct {
	projects []domain.Project
	runs     map[string]*domain.IngestRun
	addErr   error
	listErr  error
}

func (m *mockProjectService) Add(_ context.Context, name, path string) (*domain.Project, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	p := domain.Project{ID: "p1", Name: name, Path: path, CreatedAt: time.Now()}
	m.projects = append(m.projects, p)
	return &p, nil
}

func (m *mockProjectService) Get(_ context.Context, name string) (*domain.Project, error) {
	for i := range m.projects {
		if m.projects[i].Name == name {
			return &m.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockProjectService) List(_ context.Context) ([]domain.Project, error) {
	return m.projects, m.listErr
}

func (m *mockProjectService) LastRun(_ context.Context, name string) (*domain.IngestRun, error) {
	if run, ok := m.runs[name]; ok {
		return run, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockProjectService) Remove(_ context.Context, name string) error {
	for i := range m.projects {
		if m.projects[i].Name == name {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// mockIngestService implements driving.IngestService.
type mockIngestService struct {
	run *domain.IngestRun
	err error
}

func (m *mockIngestService) Ingest(_ context.Context, _ string) (*domain.IngestRun, error) {
	return m.run, m.err
}

func (m *mockIngestService) RefreshFile(_ context.Context, _, _ string) error {
	return m.err
}

// mockRetrievalService implements driving.RetrievalService.
type mockRetrievalService struct {
	result *domain.RetrievalResult
	err    error
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context, _, _ string, _ domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	return m.result, m.err
}

// mockGenerator implements driven.Generator and records the last prompt.
type mockGenerator struct {
	answer string
	usage  domain.TokenUsage
	err    error
	prompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, domain.TokenUsage, error) {
	m.prompt = prompt
	return m.answer, m.usage, m.err
}

func (m *mockGenerator) ModelName() string { return "mock-model" }
func (m *mockGenerator) Close() error      { return nil }

// stubPromptStore implements driven.PromptStore with fixed templates.
type stubPromptStore struct {
	prompts map[string]string
}

func (s *stubPromptStore) Load(name string) (string, error) {
	if prompt, ok := s.prompts[name]; ok {
		return prompt, nil
	}
	return "", domain.ErrNotFound
}

func (s *stubPromptStore) Reload()     {}
func (s *stubPromptStore) Dir() string { return "" }

// setupTestServices installs mocks into the package service vars and
// returns a cleanup that restores the previous values.
func setupTestServices() func() {
	prevProject := projectService
	prevIngest := ingestService
	prevRetrieval := retrievalService
	prevGenerator := generator
	prevPrompts := promptStore

	projectService = &mockProjectService{}
	ingestService = &mockIngestService{
		run: &domain.IngestRun{DocumentCount: 3, ChunkCount: 12, StartedAt: time.Now(), FinishedAt: time.Now()},
	}
	retrievalService = &mockRetrievalService{
		result: &domain.RetrievalResult{
			Context: "assembled context",
			Metadata: domain.RetrievalMetadata{
				ProcedureChunks: 2,
				ContextChunks:   1,
				TokenEstimate:   150,
				Sources:         []string{"SOP-001.md"},
			},
		},
	}
	generator = &mockGenerator{answer: "generated answer"}
	promptStore = nil

	return func() {
		projectService = prevProject
		ingestService = prevIngest
		retrievalService = prevRetrieval
		generator = prevGenerator
		promptStore = prevPrompts
	}
}
