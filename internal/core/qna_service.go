package core

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/qnachat/qnachat/internal/utils"
)

//go:embed qna.json
var defaultQnAData []byte

const (
	// FallbackAnswer is returned when no table entry matches the input.
	FallbackAnswer = "I'm sorry, I don't have an answer for that question in my knowledge base. Please try asking about React, JavaScript, HTML, CSS, programming concepts, or web development topics."

	// ErrorAnswer is returned when the matcher hits an internal failure.
	// The matcher never propagates an error to its caller.
	ErrorAnswer = "Sorry, I encountered an error while processing your question. Please try again."

	// minOverlapWords is how many question words must overlap the input
	// for the word-overlap tier to accept an entry.
	minOverlapWords = 2
)

type QnAEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QnAService answers free-text input from a fixed question/answer table.
// The table is loaded once at construction and never changes; matching is
// deterministic and has no persistence side effects.
type QnAService struct {
	entries []QnAEntry
	// normalized questions, index-aligned with entries
	questions []string
}

// NewQnAService loads the answer table from path, or the embedded default
// table when path is empty. Entries whose question is empty after
// normalization are invalid and skipped with a log line.
func NewQnAService(path string) (*QnAService, error) {
	data := defaultQnAData
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read QnA table %s: %w", path, err)
		}
		data = fileData
	}

	var entries []QnAEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse QnA table: %w", err)
	}

	return NewQnAServiceFromEntries(entries), nil
}

// NewQnAServiceFromEntries builds a service over an in-memory table,
// preserving table order (table order is the tie-break for every matching
// tier).
func NewQnAServiceFromEntries(entries []QnAEntry) *QnAService {
	s := &QnAService{}
	for i, entry := range entries {
		question := utils.Normalize(entry.Question)
		if question == "" {
			log.Printf("Skipping QnA entry %d with blank question", i)
			continue
		}
		s.entries = append(s.entries, entry)
		s.questions = append(s.questions, question)
	}
	return s
}

// Len reports how many valid entries the table holds.
func (s *QnAService) Len() int {
	return len(s.entries)
}

// GenerateResponse maps input to an answer by applying three tiers in
// order, returning on the first hit:
//
//  1. exact match against a normalized question
//  2. containment: input contains the question, or the question contains
//     the input
//  3. word overlap: at least two question words each contain, or are
//     contained in, some input word
//
// With no hit, FallbackAnswer is returned. Any internal failure is
// recovered into ErrorAnswer.
func (s *QnAService) GenerateResponse(input string) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Error generating response from QnA table: %v", r)
			answer = ErrorAnswer
		}
	}()

	normalized := utils.Normalize(input)

	for i, question := range s.questions {
		if question == normalized {
			return s.entries[i].Answer
		}
	}

	for i, question := range s.questions {
		if strings.Contains(normalized, question) || strings.Contains(question, normalized) {
			return s.entries[i].Answer
		}
	}

	inputWords := strings.Fields(normalized)
	for i, question := range s.questions {
		if overlap(strings.Fields(question), inputWords) >= minOverlapWords {
			return s.entries[i].Answer
		}
	}

	return FallbackAnswer
}

// overlap counts question words that contain, or are contained in, some
// input word. Containment runs in both directions per word, so very short
// words match aggressively; that is the table's documented behavior.
func overlap(questionWords, inputWords []string) int {
	count := 0
	for _, qw := range questionWords {
		for _, iw := range inputWords {
			if strings.Contains(iw, qw) || strings.Contains(qw, iw) {
				count++
				break
			}
		}
	}
	return count
}
