package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
)

// QuestionSerializer writes a question in its API form: the type is always
// present and multi-record questions carry their sub-questions.
type QuestionSerializer struct{}

func (s *QuestionSerializer) Decode(input []byte, output any) error {
	q, ok := output.(*model.Question)
	if !ok {
		return fmt.Errorf("question serializer cannot decode into %T", output)
	}
	return json.Unmarshal(input, q)
}

func (s *QuestionSerializer) Encode(input any, output io.ByteWriter) error {
	var q model.Question
	switch v := input.(type) {
	case model.Question:
		q = v
	case *model.Question:
		q = *v
	default:
		return fmt.Errorf("question serializer cannot encode %T", input)
	}

	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encoding question: %w", err)
	}
	return write(output, b)
}

// QuestionInputSerializer reads question attributes either flat or nested
// under a "question" key.
type QuestionInputSerializer struct{}

func (s *QuestionInputSerializer) Decode(input []byte, output any) error {
	in, ok := output.(*service.QuestionInput)
	if !ok {
		return fmt.Errorf("question input serializer cannot decode into %T", output)
	}

	var wrapped struct {
		Question json.RawMessage `json:"question"`
	}
	if err := json.Unmarshal(input, &wrapped); err != nil {
		return fmt.Errorf("decoding question attributes: %w", err)
	}

	body := input
	if trimmed := bytes.TrimSpace(wrapped.Question); len(trimmed) > 0 && trimmed[0] == '{' {
		body = trimmed
	}
	if err := json.Unmarshal(body, in); err != nil {
		return fmt.Errorf("decoding question attributes: %w", err)
	}
	return nil
}

func (s *QuestionInputSerializer) Encode(input any, output io.ByteWriter) error {
	b, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return write(output, b)
}

func init() {
	Register(model.Question{}, &QuestionSerializer{})
	Register(&model.Question{}, &QuestionSerializer{})
	Register(&service.QuestionInput{}, &QuestionInputSerializer{})
}
