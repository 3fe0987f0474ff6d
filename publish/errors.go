package publish

import (
	"errors"
	"fmt"
)

// Kind classifies where a Publish call failed.
type Kind uint8

const (
	KindUnknown    Kind = iota
	KindSynthesis       // the speech provider rejected the request or was unreachable
	KindEmptyAudio      // synthesis succeeded without an audio payload
	KindBuffer          // the audio could not be written to the temp file
	KindUpload          // storage rejected the upload
	KindSign            // the object is stored but no URL could be issued
)

var kindNames = [...]string{
	KindUnknown:    "unknown",
	KindSynthesis:  "synthesis",
	KindEmptyAudio: "empty_audio",
	KindBuffer:     "buffer",
	KindUpload:     "upload",
	KindSign:       "sign",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Error is returned by Publish for every failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindSynthesis:
		return "Error generating speech: " + e.detail()
	case KindEmptyAudio:
		return "Error: No audio stream returned."
	case KindBuffer:
		return "Error writing audio file: " + e.detail()
	case KindUpload:
		return "Error uploading audio file: " + e.detail()
	case KindSign:
		return "Error generating URL: " + e.detail()
	}
	return "Error: " + e.detail()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) detail() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

// KindOf reports the Kind of a Publish error, or KindUnknown when err did not
// come from Publish.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
