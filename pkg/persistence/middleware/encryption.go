package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/quizgraph/pkg/ports"
)

const envelopeKey = "__encrypted__"

// ErrNotEncrypted is returned when a stored record carries no envelope and
// plaintext reads are not allowed.
var ErrNotEncrypted = errors.New("quiz record is missing encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key fails,
	// so keys can rotate without downtime.
	FallbackKeys [][]byte

	// AllowPlaintext lets records written before encryption was enabled
	// load unchanged. They are encrypted on their next save.
	AllowPlaintext bool
}

type encryptionMiddleware struct {
	next   ports.QuizStore
	config EncryptionConfig
}

// NewEncryptionMiddleware seals whole quiz records with AES-GCM. The inner
// store only sees an envelope: the id, the timestamp, and a canvasData object
// holding the ciphertext.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.QuizStore) ports.QuizStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, quizID string, rec *ports.QuizRecord) error {
	plainText, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt quiz: %w", err)
	}

	canvas, err := json.Marshal(map[string]string{
		envelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return err
	}

	envelope := &ports.QuizRecord{
		ID:          rec.ID,
		CanvasData:  canvas,
		ScoreRanges: json.RawMessage(`[]`),
		UpdatedAt:   rec.UpdatedAt,
	}
	return m.next.Save(ctx, quizID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, quizID string) (*ports.QuizRecord, error) {
	envelope, err := m.next.Load(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var sealed map[string]any
	_ = json.Unmarshal(envelope.CanvasData, &sealed)
	encoded, ok := sealed[envelopeKey].(string)
	if !ok {
		if m.config.AllowPlaintext {
			return envelope, nil
		}
		return nil, ErrNotEncrypted
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt quiz: %w", err)
	}

	var rec ports.QuizRecord
	if err := json.Unmarshal(plainText, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted quiz: %w", err)
	}
	return &rec, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, quizID string) error {
	return m.next.Delete(ctx, quizID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
