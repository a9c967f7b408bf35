package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/yungbote/docqa-backend/internal/engine"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/rag/confidence"
)

const answerSystemPrompt = `You are a helpful assistant that answers questions using the provided context.
Base your answer primarily on the context. If the context does not contain
enough information to answer, say so explicitly. Include specific details
from the context when they support the answer.`

const notFoundAnswer = "I couldn't find any relevant information in the knowledge base to answer your question. Please try ingesting some documents first."

// promptTemplate renders the retrieved chunks and the question into the
// user message sent to the engine.
var promptTemplate = template.Must(template.New("answer").Parse(
	`Context:
{{range .Chunks}}---
{{.}}
{{end}}---

Question: {{.Question}}

Answer the question using the context above.`))

// answerer turns a question into an answer: retrieve, build a prompt,
// generate, score.
type answerer struct {
	engine    engine.Engine
	retriever *retriever
	log       *logger.Logger
	topK      int
}

func newAnswerer(eng engine.Engine, ret *retriever, log *logger.Logger, topK int) *answerer {
	return &answerer{engine: eng, retriever: ret, log: log, topK: topK}
}

// Answer runs the full batch pipeline. An empty corpus or a clean
// retrieval with no hits yields a fixed not-found answer rather than an
// error; retrieval failures propagate.
func (a *answerer) Answer(ctx context.Context, question string) (QAResult, error) {
	docs, retrievalMs, err := a.retrieve(ctx, question)
	if err != nil {
		if errors.Is(err, ErrEmptyCorpus) {
			return notFoundResult(retrievalMs), nil
		}
		return QAResult{}, err
	}
	if len(docs) == 0 {
		return notFoundResult(retrievalMs), nil
	}

	prompt, err := a.buildPrompt(question, docs)
	if err != nil {
		return QAResult{}, err
	}

	genStart := time.Now()
	answer, err := a.engine.GenerateText(ctx, answerSystemPrompt, prompt)
	if err != nil {
		return QAResult{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	generationMs := time.Since(genStart).Milliseconds()

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}

	return QAResult{
		Answer:     answer,
		Sources:    docs,
		Confidence: confidence.Score(question, contents),
		Metadata: QAMetadata{
			RetrievalTimeMs:  retrievalMs,
			GenerationTimeMs: generationMs,
			ChunksUsed:       len(docs),
		},
	}, nil
}

// AnswerStream runs the same pipeline but delivers the generated text
// incrementally over the returned channel. The channel always closes;
// at most one chunk carries Err and it is always the last.
func (a *answerer) AnswerStream(ctx context.Context, question string) (<-chan StreamChunk, error) {
	docs, _, err := a.retrieve(ctx, question)
	if err != nil && !errors.Is(err, ErrEmptyCorpus) {
		return nil, err
	}

	out := make(chan StreamChunk, 16)

	if err != nil || len(docs) == 0 {
		// Nothing to ground the answer on: emit the fixed not-found
		// text as a single chunk and close.
		go func() {
			defer close(out)
			select {
			case out <- StreamChunk{Text: notFoundAnswer}:
			case <-ctx.Done():
			}
		}()
		return out, nil
	}

	prompt, err := a.buildPrompt(question, docs)
	if err != nil {
		return nil, err
	}

	go func() {
		defer close(out)
		_, err := a.engine.StreamText(ctx, answerSystemPrompt, prompt, func(delta string) {
			select {
			case out <- StreamChunk{Text: delta}:
			case <-ctx.Done():
			}
		})
		if err != nil {
			select {
			case out <- StreamChunk{Err: fmt.Errorf("%w: %v", ErrGeneration, err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func (a *answerer) retrieve(ctx context.Context, question string) ([]ChunkDocument, int64, error) {
	start := time.Now()
	docs, err := a.retriever.Retrieve(ctx, question, a.topK)
	return docs, time.Since(start).Milliseconds(), err
}

// buildPrompt renders the template; if rendering fails it falls back to
// manual assembly so generation never dies on a formatting problem.
func (a *answerer) buildPrompt(question string, docs []ChunkDocument) (string, error) {
	chunks := make([]string, len(docs))
	for i, d := range docs {
		chunks[i] = d.Content
	}

	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Chunks   []string
		Question string
	}{Chunks: chunks, Question: question})
	if err == nil {
		return b.String(), nil
	}
	a.log.Warn("prompt template failed, using manual assembly", "error", err)

	var manual strings.Builder
	manual.WriteString("Context:\n")
	for _, c := range chunks {
		manual.WriteString("---\n")
		manual.WriteString(c)
		manual.WriteString("\n")
	}
	manual.WriteString("---\n\nQuestion: ")
	manual.WriteString(question)
	manual.WriteString("\n\nAnswer the question using the context above.")
	return manual.String(), nil
}

func notFoundResult(retrievalMs int64) QAResult {
	return QAResult{
		Answer:     notFoundAnswer,
		Sources:    []ChunkDocument{},
		Confidence: 0,
		Metadata:   QAMetadata{RetrievalTimeMs: retrievalMs},
	}
}
