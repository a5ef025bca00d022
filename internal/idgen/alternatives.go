package idgen

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/nrednav/cuid2"
	"github.com/segmentio/ksuid"
)

const (
	DefaultNanoIDSize     = 21
	DefaultNanoIDAlphabet = "_-0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DefaultCUID2Length    = 24
)

// Element id formats accepted by New.
const (
	FormatULID   = "ulid"
	FormatUUID   = "uuid"
	FormatKSUID  = "ksuid"
	FormatNanoID = "nanoid"
	FormatCUID2  = "cuid2"
)

// New returns the generator for format. An empty format means ULID.
func New(format string) (Generator, error) {
	switch strings.ToLower(format) {
	case "", FormatULID:
		return NewULIDGenerator(), nil
	case FormatUUID:
		return NewUUIDGenerator(), nil
	case FormatKSUID:
		return NewKSUIDGenerator(), nil
	case FormatNanoID:
		return NewNanoIDGenerator(DefaultNanoIDSize, DefaultNanoIDAlphabet)
	case FormatCUID2:
		return NewCUID2Generator(DefaultCUID2Length)
	default:
		return nil, fmt.Errorf("unknown id format %q", format)
	}
}

// KSUIDGenerator generates KSUIDs, which sort by creation second.
type KSUIDGenerator struct{}

func NewKSUIDGenerator() *KSUIDGenerator {
	return &KSUIDGenerator{}
}

func (g *KSUIDGenerator) Generate() (string, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate KSUID: %w", err)
	}
	return id.String(), nil
}

func (g *KSUIDGenerator) Validate(id string) (bool, string) {
	if len(id) != 27 {
		return false, fmt.Sprintf("expected length 27, got %d", len(id))
	}
	if _, err := ksuid.Parse(id); err != nil {
		return false, fmt.Sprintf("invalid KSUID format: %v", err)
	}
	return true, ""
}

// NanoIDGenerator generates NanoIDs with a fixed size and alphabet.
type NanoIDGenerator struct {
	size     int
	alphabet string
}

// NewNanoIDGenerator creates a NanoID generator. size must be between 1
// and 256 and alphabet must have at least 2 characters.
func NewNanoIDGenerator(size int, alphabet string) (*NanoIDGenerator, error) {
	if size < 1 || size > 256 {
		return nil, fmt.Errorf("nanoid size must be between 1 and 256, got %d", size)
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("nanoid alphabet must have at least 2 characters, got %d", len(alphabet))
	}
	return &NanoIDGenerator{size: size, alphabet: alphabet}, nil
}

func (g *NanoIDGenerator) Generate() (string, error) {
	id, err := gonanoid.Generate(g.alphabet, g.size)
	if err != nil {
		return "", fmt.Errorf("failed to generate NanoID: %w", err)
	}
	return id, nil
}

func (g *NanoIDGenerator) Validate(id string) (bool, string) {
	if len(id) != g.size {
		return false, fmt.Sprintf("expected length %d, got %d", g.size, len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune(g.alphabet, c) {
			return false, fmt.Sprintf("character '%c' not in alphabet", c)
		}
	}
	return true, ""
}

// CUID2Generator generates CUID2 ids of a fixed length.
type CUID2Generator struct {
	length   int
	generate func() string
}

// NewCUID2Generator creates a CUID2 generator. length must be between 2
// and 32.
func NewCUID2Generator(length int) (*CUID2Generator, error) {
	if length < 2 || length > 32 {
		return nil, fmt.Errorf("cuid2 length must be between 2 and 32, got %d", length)
	}
	gen, err := cuid2.Init(cuid2.WithLength(length))
	if err != nil {
		return nil, fmt.Errorf("failed to init CUID2 generator: %w", err)
	}
	return &CUID2Generator{length: length, generate: gen}, nil
}

func (g *CUID2Generator) Generate() (string, error) {
	return g.generate(), nil
}

func (g *CUID2Generator) Validate(id string) (bool, string) {
	if len(id) != g.length {
		return false, fmt.Sprintf("expected length %d, got %d", g.length, len(id))
	}
	if !cuid2.IsCuid(id) {
		return false, "invalid CUID2 format"
	}
	return true, ""
}
