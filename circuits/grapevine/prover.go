package grapevine

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"
)

// ProverResult contains proving metrics and the proof artifact
type ProverResult struct {
	Proof       []byte
	ProvingTime time.Duration
	Constraints int
}

// ProvingKeys holds Groth16 keys for the step circuit
type ProvingKeys struct {
	PK  groth16.ProvingKey
	VK  groth16.VerifyingKey
	CCS constraint.ConstraintSystem
}

var (
	compiled   constraint.ConstraintSystem
	compileMu  sync.Mutex
	cachedKeys *ProvingKeys
	keysMutex  sync.Mutex
)

// Compile compiles the step circuit to an R1CS over BN254 (cached).
func Compile() (constraint.ConstraintSystem, error) {
	compileMu.Lock()
	defer compileMu.Unlock()

	if compiled != nil {
		return compiled, nil
	}

	var c Circuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &c)
	if err != nil {
		return nil, fmt.Errorf("step circuit compilation failed: %w", err)
	}
	compiled = ccs
	return compiled, nil
}

// Setup performs the Groth16 setup for the step circuit (cached)
func Setup() (*ProvingKeys, error) {
	keysMutex.Lock()
	defer keysMutex.Unlock()

	if cachedKeys != nil {
		return cachedKeys, nil
	}

	ccs, err := Compile()
	if err != nil {
		return nil, err
	}

	log := logger.Logger().With().Str("component", "grapevine").Logger()
	start := time.Now()

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup failed: %w", err)
	}
	log.Debug().
		Int("constraints", ccs.GetNbConstraints()).
		Dur("took", time.Since(start)).
		Msg("groth16 setup")

	cachedKeys = &ProvingKeys{
		PK:  pk,
		VK:  vk,
		CCS: ccs,
	}

	return cachedKeys, nil
}

// Prove generates a Groth16 proof for one step assignment
func Prove(keys *ProvingKeys, assignment *Circuit) (*ProverResult, error) {
	startTime := time.Now()

	if keys == nil {
		var err error
		keys, err = Setup()
		if err != nil {
			return nil, err
		}
	}

	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}

	proof, err := groth16.Prove(keys.CCS, keys.PK, fullWitness)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}

	var proofBuf bytes.Buffer
	if _, err := proof.WriteTo(&proofBuf); err != nil {
		return nil, fmt.Errorf("proof serialization failed: %w", err)
	}

	return &ProverResult{
		Proof:       proofBuf.Bytes(),
		ProvingTime: time.Since(startTime),
		Constraints: keys.CCS.GetNbConstraints(),
	}, nil
}

// Verify verifies a step proof against its public input and output state
func Verify(keys *ProvingKeys, proofBytes []byte, ivcInput, ivcOutput [StateLen]fr.Element) error {
	if keys == nil {
		var err error
		keys, err = Setup()
		if err != nil {
			return err
		}
	}

	pubWitness, err := frontend.NewWitness(PublicAssignment(ivcInput, ivcOutput), ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("proof deserialization failed: %w", err)
	}

	if err := groth16.Verify(proof, keys.VK, pubWitness); err != nil {
		return fmt.Errorf("proof verification failed: %w", err)
	}

	return nil
}
