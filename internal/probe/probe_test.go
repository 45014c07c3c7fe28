package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Matroska file with a cover-art attachment listed first, then the main
// HEVC stream, audio and subtitles.
const sampleMultiVideo = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mjpeg",
      "codec_type": "video",
      "width": 600,
      "height": 900,
      "disposition": { "default": 0, "attached_pic": 1 }
    },
    {
      "index": 1,
      "codec_name": "hevc",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "disposition": { "default": 1, "attached_pic": 0 }
    },
    {
      "index": 2,
      "codec_name": "aac",
      "codec_type": "audio",
      "channels": 2,
      "sample_rate": "48000"
    },
    {
      "index": 3,
      "codec_name": "ass",
      "codec_type": "subtitle"
    }
  ],
  "format": {
    "filename": "/media/test/Show.S01E01.mkv",
    "nb_streams": 4,
    "format_name": "matroska,webm",
    "duration": "1437.923000",
    "size": "1234567890",
    "bit_rate": "6873456"
  }
}`

// Audio first, then a single SD video stream.
const sampleDVD = `{
  "streams": [
    { "index": 0, "codec_name": "ac3", "codec_type": "audio", "channels": 6 },
    { "index": 1, "codec_name": "mpeg2video", "codec_type": "video", "width": 720, "height": 480 }
  ],
  "format": {
    "filename": "dvd_rip.vob",
    "format_name": "mpeg",
    "duration": "5400.000000",
    "size": "4000000000"
  }
}`

// Duration as a bare JSON number, as some ffprobe wrappers emit it.
const sampleNumericDuration = `{
  "streams": [
    { "index": 0, "codec_name": "h264", "codec_type": "video", "width": 1280, "height": 720 }
  ],
  "format": { "filename": "minimal.mp4", "duration": 10.75 }
}`

func TestParseJSON_MultiVideoUsesFirst(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleMultiVideo))
	require.NoError(t, err)

	assert.Equal(t, "/media/test/Show.S01E01.mkv", pr.Format.Filename)
	assert.Equal(t, 1437.923, pr.Format.Duration)
	assert.Equal(t, 1437, pr.DurationSeconds())
	assert.Equal(t, int64(1234567890), pr.Format.Size)
	assert.Equal(t, int64(6873456), pr.Format.BitRate)

	require.NotNil(t, pr.PrimaryVideo)
	assert.Equal(t, 0, pr.PrimaryVideo.Index)
	assert.Equal(t, "mjpeg", pr.PrimaryVideo.Codec)
	assert.True(t, pr.PrimaryVideo.IsAttachedPic)
	assert.Equal(t, 2, pr.VideoStreamCount)

	w, h := pr.Dimensions()
	assert.Equal(t, 600, w)
	assert.Equal(t, 900, h)

	require.Len(t, pr.Warnings, 1, "multiple streams warn, not fail")
	assert.Contains(t, pr.Warnings[0], "2 video streams")
}

func TestParseJSON_SkipsNonVideoStreams(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleDVD))
	require.NoError(t, err)

	assert.Equal(t, 1, pr.PrimaryVideo.Index)
	assert.Equal(t, "720x480", pr.Resolution())
	assert.Equal(t, 5400, pr.DurationSeconds())
	assert.Empty(t, pr.Warnings)
}

func TestParseJSON_NumericDuration(t *testing.T) {
	pr, err := ParseJSON([]byte(sampleNumericDuration))
	require.NoError(t, err)
	assert.Equal(t, 10, pr.DurationSeconds())
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"invalid JSON", `{invalid`, ErrParse},
		{"duration not a number", `{"streams":[{"codec_type":"video","width":2,"height":2}],"format":{"duration":"N/A"}}`, ErrParse},
		{"duration missing", `{"streams":[{"codec_type":"video","width":2,"height":2}],"format":{}}`, ErrParse},
		{"no streams", `{"streams":[],"format":{"duration":"1.0"}}`, ErrNoVideoStream},
		{"audio only", `{"streams":[{"codec_type":"audio"}],"format":{"duration":"1.0"}}`, ErrNoVideoStream},
		{"zero dimensions", `{"streams":[{"codec_type":"video","width":0,"height":0}],"format":{"duration":"1.0"}}`, ErrNoVideoStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.json))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDurationSeconds_ZeroAndNegative(t *testing.T) {
	assert.Equal(t, 0, (&ProbeResult{}).DurationSeconds())
	assert.Equal(t, 0, (&ProbeResult{Format: FormatInfo{Duration: -3}}).DurationSeconds())
	assert.Equal(t, 0, (&ProbeResult{Format: FormatInfo{Duration: 0.99}}).DurationSeconds())
}

func TestResolution_Unknown(t *testing.T) {
	assert.Equal(t, "unknown", (&ProbeResult{}).Resolution())
}

func TestProbe_NotFound(t *testing.T) {
	called := false
	p := NewProberWithRunner("ffprobe", func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		called = true
		return nil, nil, nil
	})

	_, err := p.Probe(context.Background(), filepath.Join(t.TempDir(), "missing.mkv"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called, "ffprobe must not run for a missing file")
}

func TestProbe_Success(t *testing.T) {
	video := touchVideo(t)
	var gotName string
	var gotArgs []string
	p := NewProberWithRunner("/opt/ffprobe", func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		gotName, gotArgs = name, args
		return []byte(sampleDVD), nil, nil
	})

	pr, err := p.Probe(context.Background(), video)
	require.NoError(t, err)
	assert.Equal(t, 5400, pr.DurationSeconds())
	assert.Equal(t, "/opt/ffprobe", gotName)
	assert.Equal(t, Args(video), gotArgs)
	assert.Equal(t, video, gotArgs[len(gotArgs)-1], "path is passed as its own argument")
}

func TestProbe_ToolFailures(t *testing.T) {
	video := touchVideo(t)
	exitErr := errors.New("exit status 1")

	tests := []struct {
		name   string
		stderr string
		err    error
	}{
		{"non-zero exit", "", exitErr},
		{"stderr output", "moov atom not found", nil},
		{"both", "Invalid data found when processing input", exitErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProberWithRunner("ffprobe", func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
				return []byte(sampleDVD), []byte(tt.stderr), tt.err
			})
			_, err := p.Probe(context.Background(), video)
			require.ErrorIs(t, err, ErrProbeTool)

			var te *ToolError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, "ffprobe", te.Command[0])
			assert.Contains(t, te.CommandLine(), video)
			if tt.stderr != "" {
				assert.Contains(t, err.Error(), tt.stderr)
			}
			if tt.err != nil {
				assert.ErrorIs(t, err, exitErr)
			}
		})
	}
}

func TestProbe_ParseErrorNamesFile(t *testing.T) {
	video := touchVideo(t)
	p := NewProberWithRunner("ffprobe", func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return []byte("not json"), nil, nil
	})
	_, err := p.Probe(context.Background(), video)
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), video)
}

func TestProbe_ToolErrorNamesFile(t *testing.T) {
	video := filepath.Join(t.TempDir(), "corrupt-movie.mkv")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o644))

	p := NewProberWithRunner("ffprobe", func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		return nil, []byte(video + ": Invalid data found when processing input\n"), errors.New("exit status 1")
	})
	_, err := p.Probe(context.Background(), video)
	require.ErrorIs(t, err, ErrProbeTool)
	assert.Contains(t, err.Error(), video)
	assert.Contains(t, err.Error(), "Invalid data found when processing input")
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestArgs_KeepsErrorsOnStderr(t *testing.T) {
	args := Args("in.mkv")
	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, []string{"-v", "error"}, args[:2])
	assert.NotContains(t, args, "quiet")
}

func touchVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mkv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}
