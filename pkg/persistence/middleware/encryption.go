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

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new data. Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are old keys tried when decryption with the active
	// key fails, enabling zero-downtime key rotation.
	FallbackKeys [][]byte
}

// sectionPayload is the encrypted portion of the aggregate: everything
// carrying patient data. Lifecycle fields stay plaintext so listings
// and monitoring work against the envelope.
type sectionPayload struct {
	Office *domain.SectionData `json:"office,omitempty"`
	LC3    *domain.SectionData `json:"lc3,omitempty"`
	Audit  *domain.SectionData `json:"audit,omitempty"`
}

type encryptionMiddleware struct {
	next   ports.WalkoutStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the section
// payloads with AES-GCM before they reach the store, and opens them on
// the way back.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.WalkoutStore) ports.WalkoutStore {
		return &encryptionMiddleware{next: next, config: config}
	}
}

func (m *encryptionMiddleware) seal(w *domain.Walkout) (*domain.Walkout, error) {
	plain, err := json.Marshal(sectionPayload{Office: w.Office, LC3: w.LC3, Audit: w.Audit})
	if err != nil {
		return nil, fmt.Errorf("marshal section payload: %w", err)
	}

	ciphertext, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt section payload: %w", err)
	}

	envelope := w.Clone()
	envelope.Office, envelope.LC3, envelope.Audit = nil, nil, nil
	envelope.Envelope = base64.StdEncoding.EncodeToString(ciphertext)
	return envelope, nil
}

func (m *encryptionMiddleware) open(envelope *domain.Walkout) (*domain.Walkout, error) {
	if envelope.Envelope == "" {
		return nil, errors.New("stored walkout is missing its encrypted envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Envelope)
	if err != nil {
		return nil, fmt.Errorf("decode envelope base64: %w", err)
	}

	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("decrypt section payload: %w", err)
	}

	var payload sectionPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal section payload: %w", err)
	}

	w := envelope.Clone()
	w.Envelope = ""
	w.Office, w.LC3, w.Audit = payload.Office, payload.LC3, payload.Audit
	return w, nil
}

func (m *encryptionMiddleware) Create(ctx context.Context, w *domain.Walkout) error {
	envelope, err := m.seal(w)
	if err != nil {
		return err
	}
	return m.next.Create(ctx, envelope)
}

func (m *encryptionMiddleware) Update(ctx context.Context, w *domain.Walkout) error {
	envelope, err := m.seal(w)
	if err != nil {
		return err
	}
	return m.next.Update(ctx, envelope)
}

func (m *encryptionMiddleware) Get(ctx context.Context, id string) (*domain.Walkout, error) {
	envelope, err := m.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) GetByAppointment(ctx context.Context, appointmentID string) (*domain.Walkout, error) {
	envelope, err := m.next.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return m.open(envelope)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
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
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
