// Command gentestdata builds a small tree with random keys and values,
// generates a batch proof over every key, and writes the result as a
// JSON object holding the root, the leaves and the hex-encoded
// MarshalBinary proof. This is not the ProofVector array format that
// internal/vectors loads.
package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	smt "github.com/latticefold/smt"
)

func main() {
	count := flag.Int("count", 8, "number of random leaves to insert")
	out := flag.String("out", "testdata/fixture.json", "output JSON path")
	flag.Parse()

	tree := smt.Default()

	type leaf struct{ key, value smt.H256 }
	leaves := make([]leaf, 0, *count)
	for i := 0; i < *count; i++ {
		var k, v smt.H256
		if _, err := rand.Read(k[:]); err != nil {
			panic(err)
		}
		if _, err := rand.Read(v[:]); err != nil {
			panic(err)
		}
		if _, err := tree.Update(k, v); err != nil {
			panic(err)
		}
		leaves = append(leaves, leaf{k, v})
	}

	keys := make([]smt.H256, len(leaves))
	for i, l := range leaves {
		keys[i] = l.key
	}
	proof, err := tree.MerkleProof(keys)
	if err != nil {
		panic(err)
	}
	encoded, err := proof.MarshalBinary()
	if err != nil {
		panic(err)
	}

	type fixtureLeaf struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	output := struct {
		Root   string        `json:"root"`
		Leaves []fixtureLeaf `json:"leaves"`
		Proof  string        `json:"proof"`
	}{
		Root: tree.Root().String(),
	}
	for _, l := range leaves {
		output.Leaves = append(output.Leaves, fixtureLeaf{Key: l.key.String(), Value: l.value.String()})
	}
	output.Proof = fmt.Sprintf("0x%x", encoded)

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.MkdirAll("testdata", 0o755); err != nil {
		panic(err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		panic(err)
	}
	fmt.Printf("wrote %s with root %s\n", *out, output.Root)
}
