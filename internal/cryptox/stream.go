package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/secureshare/internal/common"
)

const (
	// IVSize is the length of the initialization vector prefixed to every
	// encrypted blob.
	IVSize = aes.BlockSize

	// chunkSize is the streaming buffer size; must be a multiple of the
	// AES block size.
	chunkSize = 64 * 1024
)

// StreamCipher encrypts and decrypts byte streams with AES-256-CBC and
// PKCS#7 padding. Blobs are laid out as [IV: 16 bytes][ciphertext], with a
// fresh random IV per encryption. Input is processed incrementally so
// arbitrarily large files never have to fit in memory.
type StreamCipher struct {
	key []byte
}

// NewStreamCipher binds a cipher to the key held by km.
func NewStreamCipher(km *KeyManager) *StreamCipher {
	return &StreamCipher{key: km.Key()}
}

// EncryptedSize returns the exact blob length Encrypt produces for a
// plaintext of the given size: the IV prefix plus the plaintext padded up to
// the next block boundary. The pad is always at least one byte, so a
// plaintext ending exactly on a boundary still grows by a full block.
func EncryptedSize(plaintextSize int64) int64 {
	return IVSize + plaintextSize + aes.BlockSize - plaintextSize%aes.BlockSize
}

// Encrypt reads plaintext from src and writes an IV-prefixed encrypted blob
// to dst. It returns the IV hex-encoded for the caller to persist alongside
// the blob location. Encrypt does not touch the plaintext source location;
// retiring the original is the caller's explicit step.
func (c *StreamCipher) Encrypt(dst io.Writer, src io.Reader) (string, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("iv generation: %w", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("cipher init: %w", err)
	}
	enc := cipher.NewCBCEncrypter(block, iv)

	if _, err := dst.Write(iv); err != nil {
		return "", wrapIO("write iv", err)
	}

	buf := make([]byte, chunkSize)
	fill := 0
	for {
		n, rerr := src.Read(buf[fill:])
		fill += n

		if rerr == io.EOF {
			// Pad the tail; a full pad block is appended even when the
			// plaintext ends on a block boundary.
			tail := pkcs7Pad(buf[:fill])
			enc.CryptBlocks(tail, tail)
			if _, werr := dst.Write(tail); werr != nil {
				return "", wrapIO("write ciphertext", werr)
			}
			return hex.EncodeToString(iv), nil
		}
		if rerr != nil {
			return "", wrapIO("read plaintext", rerr)
		}

		// Encrypt complete blocks, carry the remainder into the next round
		// so the loop always has buffer space left to read into.
		whole := fill - fill%aes.BlockSize
		if whole > 0 {
			enc.CryptBlocks(buf[:whole], buf[:whole])
			if _, werr := dst.Write(buf[:whole]); werr != nil {
				return "", wrapIO("write ciphertext", werr)
			}
			copy(buf, buf[whole:fill])
			fill -= whole
		}
	}
}

// Decrypt reads an IV-prefixed blob from src and writes the recovered
// plaintext to dst.
//
// Failure categories are distinguishable with errors.Is: a blob shorter than
// one IV or with non-block-aligned ciphertext fails with ErrMalformedBlob, a
// padding error (wrong key or corrupted ciphertext) with ErrDecryptionFailed,
// and reader/writer failures with ErrStorageIO.
func (c *StreamCipher) Decrypt(dst io.Writer, src io.Reader) error {
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(src, iv); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("%w: blob shorter than one IV", common.ErrMalformedBlob)
		}
		return wrapIO("read iv", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return fmt.Errorf("cipher init: %w", err)
	}
	dec := cipher.NewCBCDecrypter(block, iv)

	buf := make([]byte, chunkSize)
	fill := 0
	// The most recently decrypted block is held back until EOF so the
	// padding can be stripped from it.
	var held []byte
	for {
		n, rerr := src.Read(buf[fill:])
		fill += n
		eof := rerr == io.EOF
		if rerr != nil && !eof {
			return wrapIO("read blob", rerr)
		}
		if eof && fill%aes.BlockSize != 0 {
			return fmt.Errorf("%w: ciphertext not block-aligned", common.ErrMalformedBlob)
		}

		whole := fill - fill%aes.BlockSize
		if whole > 0 {
			dec.CryptBlocks(buf[:whole], buf[:whole])
			if held != nil {
				if _, werr := dst.Write(held); werr != nil {
					return wrapIO("write plaintext", werr)
				}
			} else {
				held = make([]byte, aes.BlockSize)
			}
			if _, werr := dst.Write(buf[:whole-aes.BlockSize]); werr != nil {
				return wrapIO("write plaintext", werr)
			}
			copy(held, buf[whole-aes.BlockSize:whole])
			copy(buf, buf[whole:fill])
			fill -= whole
		}

		if eof {
			if held == nil {
				return fmt.Errorf("%w: empty ciphertext", common.ErrMalformedBlob)
			}
			tail, uerr := pkcs7Unpad(held)
			if uerr != nil {
				return uerr
			}
			if len(tail) > 0 {
				if _, werr := dst.Write(tail); werr != nil {
					return wrapIO("write plaintext", werr)
				}
			}
			return nil
		}
	}
}

func pkcs7Pad(b []byte) []byte {
	pad := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b)+pad)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	pad := int(b[len(b)-1])
	if pad == 0 || pad > aes.BlockSize {
		return nil, fmt.Errorf("%w: bad padding", common.ErrDecryptionFailed)
	}
	for _, v := range b[len(b)-pad:] {
		if int(v) != pad {
			return nil, fmt.Errorf("%w: bad padding", common.ErrDecryptionFailed)
		}
	}
	return b[:len(b)-pad], nil
}

func wrapIO(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrStorageIO, op, err)
}
