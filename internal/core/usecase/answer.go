package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/cheese-shop-assistant/internal/core/domain"
	"github.com/kirillkom/cheese-shop-assistant/internal/core/ports"
)

const defaultContextTopK = 20

// AnswerUseCase turns retrieved documents into a generated answer. The
// direct flow keeps top-K small; the context flow deliberately asks for
// much more breadth and leaves narrowing to the generation step.
type AnswerUseCase struct {
	retriever   ports.Retriever
	generator   ports.AnswerGenerator
	directTopK  int
	contextTopK int
}

func NewAnswerUseCase(
	retriever ports.Retriever,
	generator ports.AnswerGenerator,
	directTopK, contextTopK int,
) *AnswerUseCase {
	if directTopK <= 0 {
		directTopK = defaultTopK
	}
	if contextTopK <= 0 {
		contextTopK = defaultContextTopK
	}
	return &AnswerUseCase{
		retriever:   retriever,
		generator:   generator,
		directTopK:  directTopK,
		contextTopK: contextTopK,
	}
}

func (uc *AnswerUseCase) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	return uc.answer(ctx, question, uc.directTopK)
}

func (uc *AnswerUseCase) AnswerWithContext(ctx context.Context, question string) (*domain.Answer, error) {
	return uc.answer(ctx, question, uc.contextTopK)
}

func (uc *AnswerUseCase) answer(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	result, err := uc.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve documents: %w", err)
	}

	if result.Rejected || len(result.Documents) == 0 {
		text, err := uc.generator.GenerateDecline(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("generate decline: %w", err)
		}
		return &domain.Answer{Text: text}, nil
	}

	text, err := uc.generator.GenerateAnswer(ctx, question, result.Documents)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:         text,
		Sources:      result.Documents,
		FallbackUsed: result.FallbackUsed,
	}, nil
}
