package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"
)

// Well-known artifact names used by the analysis pipeline.
const (
	ArtifactVisualization = "visualization"
	ArtifactTrajectory    = "trajectory"
	ArtifactScores        = "scores"
)

// Artifact is one named JSON document inside a bundle.
type Artifact struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// Bundle is a sealed set of artifacts: a snappy-compressed JSON payload and
// the hex BLAKE2b-256 digest of the uncompressed payload.
type Bundle struct {
	Compressed []byte `json:"compressed"`
	Digest     string `json:"digest"`
}

// Manifest attests to a bundle's origin and content digest.
type Manifest struct {
	ScenarioID string    `json:"scenario_id"`
	Digest     string    `json:"digest"`
	IssuedAt   time.Time `json:"issued_at"`
}

// Seal encodes the artifacts, digests the payload, and compresses it.
func Seal(artifacts []Artifact) (*Bundle, error) {
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: no artifacts to seal", ErrInvalidInput)
	}
	for _, a := range artifacts {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: artifact name cannot be empty", ErrInvalidInput)
		}
	}

	payload, err := json.Marshal(artifacts)
	if err != nil {
		return nil, fmt.Errorf("encode artifacts: %w", err)
	}

	// Digest covers the uncompressed payload, so tampering with either the
	// compressed bytes or the decompressed content is detected on Open.
	sum := blake2b.Sum256(payload)

	return &Bundle{
		Compressed: snappy.Encode(nil, payload),
		Digest:     hex.EncodeToString(sum[:]),
	}, nil
}

// Open decompresses a bundle, verifies its digest, and decodes the artifacts.
func Open(b *Bundle) ([]Artifact, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: bundle cannot be nil", ErrInvalidInput)
	}

	payload, err := snappy.Decode(nil, b.Compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress bundle: %w", err)
	}

	sum := blake2b.Sum256(payload)
	if hex.EncodeToString(sum[:]) != b.Digest {
		return nil, ErrDigestMismatch
	}

	var artifacts []Artifact
	if err := json.Unmarshal(payload, &artifacts); err != nil {
		return nil, fmt.Errorf("decode artifacts: %w", err)
	}
	return artifacts, nil
}

// Find returns the named artifact from an opened bundle.
func Find(artifacts []Artifact, name string) (Artifact, bool) {
	for _, a := range artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// SignManifest issues a signed manifest token binding the bundle's digest
// to the scenario it was produced for.
func SignManifest(b *Bundle, scenarioID string, key []byte) (string, error) {
	if b == nil {
		return "", fmt.Errorf("%w: bundle cannot be nil", ErrInvalidInput)
	}
	if len(key) == 0 {
		return "", fmt.Errorf("%w: signing key cannot be empty", ErrInvalidInput)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"scenario_id": scenarioID,
		"digest":      b.Digest,
		"iat":         time.Now().Unix(),
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign manifest: %w", err)
	}
	return signed, nil
}

// VerifyManifest checks a manifest token's signature and confirms its digest
// claim matches the bundle.
func VerifyManifest(tokenString string, b *Bundle, key []byte) (*Manifest, error) {
	if tokenString == "" {
		return nil, ErrInvalidManifest
	}
	if b == nil {
		return nil, fmt.Errorf("%w: bundle cannot be nil", ErrInvalidInput)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if !token.Valid {
		return nil, ErrInvalidManifest
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidManifest
	}

	digest, ok := claimsMap["digest"].(string)
	if !ok || digest == "" {
		return nil, fmt.Errorf("%w: missing or invalid digest claim", ErrInvalidManifest)
	}
	if digest != b.Digest {
		return nil, fmt.Errorf("%w: digest claim does not match bundle", ErrInvalidManifest)
	}

	scenarioID, ok := claimsMap["scenario_id"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing or invalid scenario_id claim", ErrInvalidManifest)
	}

	m := &Manifest{ScenarioID: scenarioID, Digest: digest}
	if iat, ok := claimsMap["iat"].(float64); ok {
		m.IssuedAt = time.Unix(int64(iat), 0)
	}
	return m, nil
}
