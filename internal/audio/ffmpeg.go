// Package audio provides audio decoding and probing using FFmpeg.
// It includes features for extracting PCM samples for analysis, reading
// stream metadata with ffprobe, and cutting labeled clips out of a file.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Supported clip file extensions and their corresponding FFmpeg codecs and formats
var (
	supportedExtensions = map[string]struct {
		codec  string
		format string
	}{
		"mp3":  {"libmp3lame", "mp3"},
		"m4a":  {"aac", "mp4"},
		"wav":  {"pcm_s16le", "wav"},
		"flac": {"flac", "flac"},
	}

	// Default audio settings
	defaultClipBitrate = "128k"
)

// IsSupportedClipExtension reports whether clips can be written with
// the given file extension (without the leading dot).
func IsSupportedClipExtension(ext string) bool {
	_, ok := supportedExtensions[strings.ToLower(ext)]
	return ok
}

var (
	ErrFileNotFound     = fmt.Errorf("file not found")
	ErrFileEmpty        = fmt.Errorf("file is empty")
	ErrInvalidPath      = fmt.Errorf("invalid path")
	ErrInvalidExtension = fmt.Errorf("invalid file extension")
	ErrNoAudioStream    = fmt.Errorf("no audio stream")
)

// ffmpegError wraps FFmpeg command errors with additional context
type ffmpegError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *ffmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *ffmpegError) Unwrap() error {
	return e.wrapped
}

// newFFmpegError creates a new ffmpegError with truncated command output
func newFFmpegError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &ffmpegError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

type ffmpeg struct{}

func NewFFMPEGEngine() *ffmpeg {
	return &ffmpeg{}
}

func (f *ffmpeg) validateFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}

// probeFormat mirrors the JSON ffprobe emits for -show_format.
type probeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Duration   string `json:"duration"`
}

type probeOutput struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

// Probe reads stream metadata with ffprobe.
func (f *ffmpeg) Probe(ctx context.Context, inputPath string) (*ProbeResult, error) {
	slog.Debug("Probing audio file", "input", inputPath)

	if err := f.validateFile(inputPath); err != nil {
		return nil, fmt.Errorf("probe failed: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		inputPath,
	)

	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newFFmpegError(cmd, output, err)
	}

	var probed probeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	return buildProbeResult(&probed)
}

func buildProbeResult(probed *probeOutput) (*ProbeResult, error) {
	result := &ProbeResult{Format: probed.Format.FormatName}

	if probed.Format.Duration != "" {
		d, err := strconv.ParseFloat(probed.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", probed.Format.Duration, err)
		}
		result.Duration = d
	}

	if probed.Format.BitRate != "" {
		if br, err := strconv.ParseInt(probed.Format.BitRate, 10, 64); err == nil {
			result.BitRate = br
		}
	}

	for _, stream := range probed.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		result.Channels = stream.Channels
		if stream.SampleRate != "" {
			if sr, err := strconv.Atoi(stream.SampleRate); err == nil {
				result.SampleRate = sr
			}
		}
		// Some containers only report duration on the stream
		if result.Duration == 0 && stream.Duration != "" {
			if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
				result.Duration = d
			}
		}
		return result, nil
	}

	return nil, ErrNoAudioStream
}

// Decode converts the input to mono 16-bit PCM at the requested rate and
// returns the samples scaled to [-1, 1].
func (f *ffmpeg) Decode(ctx context.Context, inputPath string, sampleRate int) ([]float64, error) {
	slog.Debug("Decoding audio file", "input", inputPath, "sampleRate", sampleRate)

	if err := f.validateFile(inputPath); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-v", "quiet",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newFFmpegError(cmd, stderr.Bytes(), err)
	}

	samples := bytesToSamples(stdout.Bytes())
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s decoded to zero samples", ErrFileEmpty, inputPath)
	}

	return samples, nil
}

// bytesToSamples converts little-endian signed 16-bit PCM to [-1, 1] floats.
// A trailing odd byte is dropped.
func bytesToSamples(raw []byte) []float64 {
	n := len(raw) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		samples[i] = float64(v) / float64(math.MaxInt16+1)
	}
	return samples
}

// sanitizePath ensures the path is safe and returns an absolute path
func (f *ffmpeg) sanitizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Allow temporary files (system temp directory)
	tempDir := os.TempDir()
	if tempDir != "" {
		absTempDir, err := filepath.Abs(tempDir)
		if err == nil && strings.HasPrefix(absPath, absTempDir) {
			return absPath, nil
		}
	}

	// Allow paths within the working directory
	baseDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	if strings.HasPrefix(absPath, baseDir) {
		return absPath, nil
	}

	// Check for path traversal attempts
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: path contains '..' which is not allowed", ErrInvalidPath)
	}

	// For output directories, allow if they're absolute paths without traversal
	if filepath.IsAbs(path) && !strings.Contains(path, "..") {
		return absPath, nil
	}

	return "", fmt.Errorf("%w: path must be within the working directory or a safe absolute path", ErrInvalidPath)
}

// ExtractClip cuts the [start, end) range of the input into its own file.
func (f *ffmpeg) ExtractClip(ctx context.Context, cp ClipParams) error {
	if err := f.validateFile(cp.InputPath); err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}

	codecInfo, ok := supportedExtensions[strings.ToLower(cp.FileExtension)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, cp.FileExtension)
	}

	if cp.EndSeconds <= cp.StartSeconds {
		return fmt.Errorf("invalid clip range: start %.3f end %.3f", cp.StartSeconds, cp.EndSeconds)
	}

	sanitizedOutputPath, err := f.sanitizePath(cp.OutputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	outputDir := filepath.Dir(sanitizedOutputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	slog.Debug("Extracting clip",
		"input", cp.InputPath,
		"output", sanitizedOutputPath,
		"start", fmt.Sprintf("%.3f", cp.StartSeconds),
		"end", fmt.Sprintf("%.3f", cp.EndSeconds),
		"label", cp.Label,
	)

	args := []string{
		"-y",
		"-i", cp.InputPath,
		"-ss", fmt.Sprintf("%.3f", cp.StartSeconds),
		"-t", fmt.Sprintf("%.3f", cp.EndSeconds-cp.StartSeconds),
		"-map", "0:a",
		"-c:a", codecInfo.codec,
		"-f", codecInfo.format,
		"-b:a", defaultClipBitrate,
		"-af", "aresample=async=1",
	}

	if cp.Label != "" {
		args = append(args, "-metadata", fmt.Sprintf("title=%s", cp.Label))
	}

	args = append(args, sanitizedOutputPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newFFmpegError(cmd, output, err)
	}

	return nil
}
