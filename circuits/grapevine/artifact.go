package grapevine

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
)

// WriteArtifact compiles the step circuit and writes the serialized R1CS to path.
func WriteArtifact(path string) error {
	ccs, err := Compile()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := ccs.WriteTo(w); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return f.Sync()
}

// ReadArtifact loads an R1CS previously written by WriteArtifact.
func ReadArtifact(path string) (constraint.ConstraintSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	ccs := groth16.NewCS(ecc.BN254)
	if _, err := ccs.ReadFrom(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return ccs, nil
}

// VerifyingKeyBytes returns the serialized verifying key.
func VerifyingKeyBytes(vk groth16.VerifyingKey) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ComputeVKHash computes the SHA256 hash of raw VK bytes
func ComputeVKHash(vkBytes []byte) string {
	hash := sha256.Sum256(vkBytes)
	return hex.EncodeToString(hash[:])
}

// CircuitID is the short form of the VK hash used in transcripts and logs.
func CircuitID(vk groth16.VerifyingKey) (string, error) {
	raw, err := VerifyingKeyBytes(vk)
	if err != nil {
		return "", fmt.Errorf("serialize vk: %w", err)
	}
	return ComputeVKHash(raw)[:16], nil
}
