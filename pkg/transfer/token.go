package transfer

import (
	"bytes"
	"crypto/des"
	"encoding/base64"
	"fmt"
)

// Workers authenticate their completion callback with a shared token
// encrypted under DES-ECB, a scheme fixed by the worker images. The token is
// zero padded to the 8 byte block size before encryption and the padding is
// stripped after decryption.

func EncryptToken(key, token string) (string, error) {
	block, err := des.NewCipher([]byte(key))
	if err != nil {
		return "", fmt.Errorf("bad encryption key: %w", err)
	}

	padded := []byte(token)
	if rem := len(padded) % des.BlockSize; rem != 0 {
		padded = append(padded, bytes.Repeat([]byte{0}, des.BlockSize-rem)...)
	}

	encrypted := make([]byte, len(padded))
	for i := 0; i < len(padded); i += des.BlockSize {
		block.Encrypt(encrypted[i:i+des.BlockSize], padded[i:i+des.BlockSize])
	}

	return base64.StdEncoding.EncodeToString(encrypted), nil
}

func DecryptToken(key, encoded string) (string, error) {
	block, err := des.NewCipher([]byte(key))
	if err != nil {
		return "", fmt.Errorf("bad encryption key: %w", err)
	}

	encrypted, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("token is not valid base64: %w", err)
	}

	if len(encrypted) == 0 || len(encrypted)%des.BlockSize != 0 {
		return "", fmt.Errorf("token length %d is not a multiple of the block size", len(encrypted))
	}

	decrypted := make([]byte, len(encrypted))
	for i := 0; i < len(encrypted); i += des.BlockSize {
		block.Decrypt(decrypted[i:i+des.BlockSize], encrypted[i:i+des.BlockSize])
	}

	return string(bytes.TrimRight(decrypted, "\x00")), nil
}
