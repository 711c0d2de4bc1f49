package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
)

type answerRetrieverFake struct {
	result   *domain.RetrievalResult
	err      error
	lastTopK int
}

func (f *answerRetrieverFake) Retrieve(_ context.Context, _ string, topK int) (*domain.RetrievalResult, error) {
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type answerGeneratorFake struct {
	answerCalls  int
	declineCalls int
	err          error
}

func (f *answerGeneratorFake) GenerateAnswer(context.Context, string, []domain.RetrievedDocument) (string, error) {
	f.answerCalls++
	if f.err != nil {
		return "", f.err
	}
	return "answer", nil
}

func (f *answerGeneratorFake) GenerateDecline(context.Context, string) (string, error) {
	f.declineCalls++
	if f.err != nil {
		return "", f.err
	}
	return "decline", nil
}

func TestAnswerGeneratesFromDocuments(t *testing.T) {
	retriever := &answerRetrieverFake{result: &domain.RetrievalResult{
		Documents:    []domain.RetrievedDocument{{UPC: "a", Score: 0.9}},
		FallbackUsed: true,
	}}
	generator := &answerGeneratorFake{}
	uc := NewAnswerUseCase(retriever, generator, 5, 20)

	answer, err := uc.Answer(context.Background(), "cheddar?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "answer" {
		t.Fatalf("text = %q", answer.Text)
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("sources = %v", answer.Sources)
	}
	if !answer.FallbackUsed {
		t.Fatal("fallback flag must propagate to the answer")
	}
	if generator.declineCalls != 0 {
		t.Fatal("decline must not run when documents exist")
	}
	if retriever.lastTopK != 5 {
		t.Fatalf("direct top k = %d", retriever.lastTopK)
	}
}

func TestAnswerWithContextUsesWiderTopK(t *testing.T) {
	retriever := &answerRetrieverFake{result: &domain.RetrievalResult{
		Documents: []domain.RetrievedDocument{{UPC: "a"}},
	}}
	uc := NewAnswerUseCase(retriever, &answerGeneratorFake{}, 5, 20)

	if _, err := uc.AnswerWithContext(context.Background(), "cheddar?"); err != nil {
		t.Fatalf("AnswerWithContext() error = %v", err)
	}
	if retriever.lastTopK != 20 {
		t.Fatalf("context top k = %d", retriever.lastTopK)
	}
}

func TestAnswerDeclinesRejectedQuestion(t *testing.T) {
	retriever := &answerRetrieverFake{result: &domain.RetrievalResult{Rejected: true}}
	generator := &answerGeneratorFake{}
	uc := NewAnswerUseCase(retriever, generator, 5, 20)

	answer, err := uc.Answer(context.Background(), "what is the weather?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "decline" {
		t.Fatalf("text = %q", answer.Text)
	}
	if generator.answerCalls != 0 || generator.declineCalls != 1 {
		t.Fatalf("generator calls: answer=%d decline=%d", generator.answerCalls, generator.declineCalls)
	}
}

func TestAnswerDeclinesWhenNothingRetrieved(t *testing.T) {
	retriever := &answerRetrieverFake{result: &domain.RetrievalResult{}}
	generator := &answerGeneratorFake{}
	uc := NewAnswerUseCase(retriever, generator, 5, 20)

	answer, err := uc.Answer(context.Background(), "obscure cheese nobody stocks")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != "decline" || len(answer.Sources) != 0 {
		t.Fatalf("unexpected answer: %+v", answer)
	}
}

func TestAnswerPropagatesRetrieveError(t *testing.T) {
	retriever := &answerRetrieverFake{err: domain.WrapError(domain.ErrStoreUnavailable, "retrieve", errors.New("down"))}
	uc := NewAnswerUseCase(retriever, &answerGeneratorFake{}, 5, 20)

	_, err := uc.Answer(context.Background(), "cheddar?")
	if !domain.IsKind(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
