package completion

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultChunkSize is the number of characters per streamed content slice.
// A tuning value, not a protocol requirement.
const DefaultChunkSize = 40

// Chunk is one element of a streamed response (chat.completion.chunk wire
// shape). Every chunk of a response shares the envelope's id, created
// timestamp and model.
type Chunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"` // "chat.completion.chunk"
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice carries the incremental delta of a chunk.
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Delta is the incremental piece of the assistant message. The header chunk
// carries only the role; the terminal chunk carries neither field.
type Delta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// Chunks splits the envelope's reply text into a streamed chunk sequence:
// a role header chunk, one chunk per fixed-size slice of the text, and a
// terminal empty-delta chunk with the stop reason. Slicing is rune-based so
// multi-byte characters never straddle a boundary; concatenating the content
// chunks reproduces the reply exactly.
func Chunks(env *Envelope, chunkSize int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	mk := func(delta Delta, finish *string) Chunk {
		return Chunk{
			ID:      env.ID,
			Object:  "chat.completion.chunk",
			Created: env.Created,
			Model:   env.Model,
			Choices: []ChunkChoice{{Index: 0, Delta: delta, FinishReason: finish}},
		}
	}

	chunks := []Chunk{mk(Delta{Role: "assistant"}, nil)}

	text := []rune(env.Choices[0].Message.Content)
	for start := 0; start < len(text); start += chunkSize {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, mk(Delta{Content: string(text[start:end])}, nil))
	}

	stop := env.Choices[0].FinishReason
	chunks = append(chunks, mk(Delta{}, &stop))
	return chunks
}

// WriteSSE encodes the chunk sequence as server-sent events followed by the
// [DONE] sentinel, flushing after every event when the writer supports it.
func WriteSSE(w io.Writer, chunks []Chunk) error {
	flusher, _ := w.(http.Flusher)
	for _, chunk := range chunks {
		data, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if _, err := io.WriteString(w, "data: [DONE]\n\n"); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}
