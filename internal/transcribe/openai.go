package transcribe

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// RemoteTranscriber sends audio to the OpenAI Whisper API. Useful when no
// local model or accelerator is available; the serialization guarantee of the
// host still applies, it just bounds concurrent spend instead of VRAM.
type RemoteTranscriber struct {
	client *openai.Client
}

// NewRemoteTranscriber creates an OpenAI-backed transcriber.
func NewRemoteTranscriber(client *openai.Client) *RemoteTranscriber {
	return &RemoteTranscriber{client: client}
}

// Load checks the client is usable. There is no model to warm remotely.
func (rt *RemoteTranscriber) Load(ctx context.Context) error {
	if rt.client == nil {
		return fmt.Errorf("openai client is nil, set OPENAI_API_KEY")
	}
	return nil
}

// Transcribe uploads the audio file to the Whisper endpoint.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	}
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("createTranscription failed: %w", err)
	}
	return resp.Text, nil
}
