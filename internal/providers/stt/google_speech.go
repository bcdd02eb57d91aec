package stt

import (
	"context"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// GoogleSpeech transcribes call recordings referenced by URI. Platform
// recordings are stereo telephony audio, so channel recognition is enabled
// and both legs land in one transcript.
type GoogleSpeech struct {
	c *speech.Client
}

// NewGoogleSpeech builds the client. credentialsFile may be empty, in which
// case application default credentials apply.
func NewGoogleSpeech(ctx context.Context, credentialsFile string) (*GoogleSpeech, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{c: c}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func (g *GoogleSpeech) TranscribeURI(ctx context.Context, uri, language string) (string, float64, error) {
	if language == "" {
		language = "en-US"
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			LanguageCode:                        language,
			EnableAutomaticPunctuation:          true,
			AudioChannelCount:                   2,
			EnableSeparateRecognitionPerChannel: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Uri{Uri: uri},
		},
	})
	if err != nil {
		return "", 0, err
	}

	var text string
	var confSum float64
	var n int
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		best := r.Alternatives[0]
		if best.Transcript == "" {
			continue
		}
		if text != "" {
			text += " "
		}
		text += best.Transcript
		confSum += float64(best.Confidence)
		n++
	}

	var conf float64
	if n > 0 {
		conf = confSum / float64(n)
	}
	return text, conf, nil
}
