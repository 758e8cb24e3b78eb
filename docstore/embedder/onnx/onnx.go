//go:build onnx

// Package onnx provides a local embedder backed by ONNX Runtime, intended
// for all-MiniLM-L6-v2. It gives the store real semantic search without a
// network dependency, mirroring an embedded vector database's built-in
// embedding model. Build with -tags onnx; the onnxruntime shared library
// path is read from ONNXRUNTIME_SHARED_LIBRARY.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	defaultDimensions = 384 // all-MiniLM-L6-v2
	maxSequenceLength = 128

	clsTokenID = 101
	sepTokenID = 102
	unkTokenID = 100
)

// Config configures the ONNX embedder.
type Config struct {
	// ModelPath is the path to the ONNX model file. Required.
	ModelPath string

	// TokenizerPath is the path to the HuggingFace tokenizer.json. Required.
	TokenizerPath string

	// Dimensions is the embedding vector size. Defaults to 384.
	Dimensions int
}

// Embedder generates embeddings with an ONNX Runtime session.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
}

// New creates an ONNX embedder. The ONNX Runtime environment is
// initialized on first use and shared process-wide.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx: ModelPath is required")
	}
	if cfg.TokenizerPath == "" {
		return nil, fmt.Errorf("onnx: TokenizerPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = defaultDimensions
	}

	if lib := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY"); lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
		}
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}

	return &Embedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed tokenizes text, runs the model, and mean-pools the hidden states
// into a normalized embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inputIDs := make([]int64, maxSequenceLength)
	attentionMask := make([]int64, maxSequenceLength)
	tokenTypeIDs := make([]int64, maxSequenceLength)

	tokens := e.tokenizer.tokenize(text)
	if len(tokens) > maxSequenceLength-2 {
		tokens = tokens[:maxSequenceLength-2]
	}

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1
	for i, tok := range tokens {
		inputIDs[i+1] = tok
		attentionMask[i+1] = 1
	}
	inputIDs[len(tokens)+1] = sepTokenID
	attentionMask[len(tokens)+1] = 1

	shape := ort.NewShape(1, maxSequenceLength)
	tensors := make([]ort.Value, 0, 3)
	for _, data := range [][]int64{inputIDs, attentionMask, tokenTypeIDs} {
		tensor, err := ort.NewTensor(shape, data)
		if err != nil {
			for _, t := range tensors {
				t.Destroy()
			}
			return nil, fmt.Errorf("onnx: create input tensor: %w", err)
		}
		tensors = append(tensors, tensor)
	}
	defer func() {
		for _, t := range tensors {
			t.Destroy()
		}
	}()

	outputs := []ort.Value{nil}
	if err := e.session.Run(tensors, outputs); err != nil {
		return nil, fmt.Errorf("onnx: inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("onnx: unexpected output tensor type")
	}

	return e.pool(out, attentionMask)
}

// pool reduces the model output to a single normalized vector. Handles
// both pre-pooled [1, dims] outputs and raw [1, seq, dims] hidden states.
func (e *Embedder) pool(out *ort.Tensor[float32], attentionMask []int64) ([]float32, error) {
	data := out.GetData()
	shape := out.GetShape()

	embedding := make([]float32, e.dimensions)

	switch len(shape) {
	case 2:
		if len(data) < e.dimensions {
			return nil, fmt.Errorf("onnx: output dimension mismatch: got %d, want %d", len(data), e.dimensions)
		}
		copy(embedding, data[:e.dimensions])
	case 3:
		seqLen, hidden := int(shape[1]), int(shape[2])
		if hidden != e.dimensions {
			return nil, fmt.Errorf("onnx: hidden size mismatch: got %d, want %d", hidden, e.dimensions)
		}
		// Mean pooling over attended positions only.
		var attended float32
		for i := 0; i < seqLen && i < len(attentionMask); i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * hidden
			for j := 0; j < hidden; j++ {
				embedding[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return nil, fmt.Errorf("onnx: no attended tokens")
		}
		for j := range embedding {
			embedding[j] /= attended
		}
	default:
		return nil, fmt.Errorf("onnx: unexpected output shape %v", shape)
	}

	return normalize(embedding), nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}

// wordPieceTokenizer is a minimal BERT WordPiece tokenizer, enough for
// MiniLM-family models.
type wordPieceTokenizer struct {
	vocab map[string]int
}

func loadTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("empty vocab in %s", path)
	}

	return &wordPieceTokenizer{vocab: file.Model.Vocab}, nil
}

func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	var tokens []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}
		tokens = append(tokens, t.splitWord(word)...)
	}
	return tokens
}

// splitWord greedily matches the longest vocab prefix, using the ##
// continuation form past the first piece.
func (t *wordPieceTokenizer) splitWord(word string) []int64 {
	var pieces []int64
	start := 0
	for start < len(word) {
		matched := false
		for end := len(word); end > start; end-- {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				pieces = append(pieces, int64(id))
				start = end
				matched = true
				break
			}
		}
		if !matched {
			pieces = append(pieces, unkTokenID)
			start++
		}
	}
	return pieces
}
