package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	"grapevine/circuits/grapevine"
	"grapevine/pkg/field"
	"grapevine/pkg/inputs"
	"grapevine/pkg/ivc"
)

type demoFlags struct {
	Phrase string
	Users  []string
	Seed   string
	Prove  bool
}

var demo demoFlags

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a phrase through a chain of users, with chaff between hops",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(demo.Users) < 1 {
			return errors.New("at least one user is required")
		}

		var rng io.Reader
		if demo.Seed != "" {
			raw, err := hex.DecodeString(demo.Seed)
			if err != nil || len(raw) != 32 {
				return errors.New("--seed must be 32 bytes of hex")
			}
			var seed [32]byte
			copy(seed[:], raw)
			rng = field.NewSeededReader(seed)
		}

		exec, err := loadExecutor()
		if err != nil {
			return err
		}
		chain, err := ivc.NewChain(exec, ivc.Options{Rand: rng, Prove: demo.Prove})
		if err != nil {
			return err
		}

		steps, err := demoSteps(demo.Phrase, demo.Users, rng)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		for i, in := range steps {
			z, err := chain.Step(ctx, in)
			if err != nil {
				return err
			}
			printState(i, in, z)
		}

		if !demo.Prove {
			return nil
		}
		tr := chain.Transcript()
		if err := ivc.VerifyChain(ctx, nil, ivc.InitialState(), tr); err != nil {
			return err
		}
		fmt.Printf("verified %d folds for circuit %s\n", len(tr.Folds), tr.CircuitID)
		return nil
	},
}

func init() {
	demoCmd.Flags().StringVar(&demo.Phrase, "phrase", "This is a secret", "phrase shared along the chain")
	demoCmd.Flags().StringSliceVar(&demo.Users, "users", []string{"alice", "bob", "charlie"}, "users in hop order")
	demoCmd.Flags().StringVar(&demo.Seed, "seed", "", "hex seed for reproducible secrets and chaff (default: crypto/rand)")
	demoCmd.Flags().BoolVar(&demo.Prove, "prove", false, "prove every fold with Groth16 and verify the chain")
}

// demoSteps issues each user a random auth secret and builds
// genesis, chaff, link, chaff, ... for the given users.
func demoSteps(phrase string, users []string, rng io.Reader) ([]inputs.PrivateInput, error) {
	secrets := make([]*big.Int, len(users))
	for i := range users {
		s, err := field.Random(rng)
		if err != nil {
			return nil, err
		}
		secrets[i] = field.ToBigInt(s)
	}

	steps := []inputs.PrivateInput{
		inputs.Genesis{Phrase: phrase, Username: users[0], Secret: secrets[0]},
		inputs.Chaff{},
	}
	for i := 1; i < len(users); i++ {
		steps = append(steps,
			inputs.Link{UsernameA: users[i-1], UsernameB: users[i], SecretA: secrets[i-1], SecretB: secrets[i]},
			inputs.Chaff{},
		)
	}
	return steps, nil
}

func printState(i int, in inputs.PrivateInput, z []fr.Element) {
	kind := "logic"
	if _, ok := in.(inputs.Chaff); ok {
		kind = "chaff"
	}
	fmt.Printf("fold %d (%s): degree=%d chaff=%d scope=%s relation=%s\n",
		i, kind,
		z[grapevine.StateDegree].Uint64(),
		z[grapevine.StateChaff].Uint64(),
		short(z[grapevine.StateScope]),
		short(z[grapevine.StateRelation]),
	)
}

func short(e fr.Element) string {
	b := e.Bytes()
	return hex.EncodeToString(b[:6])
}
