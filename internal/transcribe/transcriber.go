package transcribe

import "context"

// Transcriber is a speech-to-text backend. Load is called once at startup;
// Transcribe is never invoked concurrently.
type Transcriber interface {
	// Load prepares the model. A failure here is fatal to the service.
	Load(ctx context.Context) error
	// Transcribe converts a local audio file to text.
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// MediaFetcher resolves a media source reference (a YouTube video id) to a
// local audio file. The returned cleanup removes any temporary files and is
// safe to call even when err is non-nil.
type MediaFetcher interface {
	Fetch(ctx context.Context, source string) (audioPath string, cleanup func(), err error)
}

// Archiver optionally keeps a copy of fetched audio in object storage.
type Archiver interface {
	Archive(ctx context.Context, source, audioPath string) error
}
