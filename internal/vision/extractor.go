package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/stemsi/exscan-backend/internal/grid"
	"google.golang.org/api/option"
)

// extractPrompt is the fixed contract sent with every sheet photo. The model
// must reply with a bare JSON object mapping question numbers to the list of
// marked answer positions (A=1, B=2, ...).
const extractPrompt = `I am a teacher grading a student's test. The student's answer sheet is a grid: the left side contains the question numbers (1, 2, 3, ...) and the top contains the answer positions (A, B, C, ...).
Identify the cells that are filled or marked (with an 'X', a checkmark, or any other mark). For each question, list the answer positions that are selected.
Respond with a JSON object where each key is a question number and each value is a list of answer positions converted to integers, for example A is 1, B is 2, C is 3. If multiple answers are marked for a question, the list contains multiple integers.
Return only the raw, valid JSON object in one line without any extra whitespace, formatting, or explanation.
The format should look like this: {"1": [2], "2": [1, 3], "3": [3]}`

// ErrNotConfigured is returned when extraction is attempted without a
// configured API key.
var ErrNotConfigured = errors.New("vision extractor is not configured")

// GridExtractor turns a photographed answer sheet into structured marks.
// Implementations are best-effort and non-deterministic: marks may be
// mis-detected and questions may be missing from the result entirely.
type GridExtractor interface {
	ExtractGrid(ctx context.Context, photoURL string) (grid.Marks, error)
}

// GeminiExtractor extracts answer grids with the Gemini vision API.
type GeminiExtractor struct {
	model     *genai.GenerativeModel
	httpc     *http.Client
	uploadDir string
	log       zerolog.Logger
}

// NewGeminiExtractor creates a GeminiExtractor. A missing API key is not a
// construction error: the server must still boot, so extraction calls fail
// per-job instead.
func NewGeminiExtractor(ctx context.Context, apiKey, modelName, uploadDir string, log zerolog.Logger) (*GeminiExtractor, error) {
	e := &GeminiExtractor{
		httpc:     http.DefaultClient,
		uploadDir: uploadDir,
		log:       log.With().Str("component", "gemini_extractor").Logger(),
	}

	if apiKey == "" {
		e.log.Warn().Msg("GEMINI_API_KEY is not set, grading jobs will fail until configured")
		return e, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	e.model = client.GenerativeModel(modelName)
	return e, nil
}

// ExtractGrid downloads the sheet photo, sends it to the vision model with
// the fixed prompt, and parses the reply. Every failure path returns an
// error for the caller to treat as a grading failure; nothing here is fatal
// to the worker process.
func (e *GeminiExtractor) ExtractGrid(ctx context.Context, photoURL string) (grid.Marks, error) {
	if e.model == nil {
		return nil, ErrNotConfigured
	}

	data, mimeType, err := e.loadPhoto(ctx, photoURL)
	if err != nil {
		return nil, err
	}

	resp, err := e.model.GenerateContent(ctx,
		genai.ImageData(strings.TrimPrefix(mimeType, "image/"), data),
		genai.Text(extractPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("vision model returned no content")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			reply.WriteString(string(txt))
		}
	}

	marks, err := parseMarks(reply.String())
	if err != nil {
		e.log.Warn().Err(err).Str("raw", reply.String()).Msg("Unparseable extraction reply")
		return nil, err
	}

	e.log.Info().Int("questions", len(marks)).Msg("Extracted answer grid")
	return marks, nil
}

// loadPhoto resolves a stored photo reference. Relative /uploads/ paths are
// read straight from local storage, absolute URLs are fetched over HTTP.
func (e *GeminiExtractor) loadPhoto(ctx context.Context, photoURL string) ([]byte, string, error) {
	if photoURL == "" {
		return nil, "", errors.New("photo URL is empty")
	}
	if strings.HasPrefix(photoURL, "http://") || strings.HasPrefix(photoURL, "https://") {
		return e.fetchPhoto(ctx, photoURL)
	}
	return e.readLocalPhoto(photoURL)
}

// readLocalPhoto reads an uploaded photo from the local upload directory.
// filepath.Base strips any path components a crafted URL might carry.
func (e *GeminiExtractor) readLocalPhoto(photoURL string) ([]byte, string, error) {
	path := filepath.Join(e.uploadDir, filepath.Base(photoURL))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read photo %s: %w", photoURL, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("cannot determine image type of %s", photoURL)
	}
	return data, mimeType, nil
}

// fetchPhoto downloads a sheet photo and determines its MIME type from the
// Content-Type header, falling back to the URL extension.
func (e *GeminiExtractor) fetchPhoto(ctx context.Context, photoURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build photo request: %w", err)
	}

	resp, err := e.httpc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch photo %s: %w", photoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch photo %s: status %d", photoURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read photo body: %w", err)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil && strings.HasPrefix(mediaType, "image/") {
			return data, mediaType, nil
		}
	}

	mimeType := mime.TypeByExtension(filepath.Ext(photoURL))
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("cannot determine image type of %s", photoURL)
	}
	return data, mimeType, nil
}
