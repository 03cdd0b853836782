package network

import (
	"testing"

	G "gorgonia.org/gorgonia"
)

func newTestMLP(t *testing.T, features, batch int) *MLP {
	t.Helper()
	net, err := NewMLP(features, batch, G.NewGraph(), []int{8},
		[]bool{true}, G.GlorotN(1.0), []*Activation{TanH()})
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func learnableData(t *testing.T, net *MLP) [][]float64 {
	t.Helper()
	var data [][]float64
	for _, node := range net.Learnables() {
		data = append(data, node.Value().Data().([]float64))
	}
	return data
}

func TestMLPForwardPass(t *testing.T) {
	features, batch := 3, 4
	net := newTestMLP(t, features, batch)

	input := make([]float64, features*batch)
	for i := range input {
		input[i] = float64(i) * 0.1
	}
	if err := net.SetInput(input); err != nil {
		t.Fatal(err)
	}

	vm := G.NewTapeMachine(net.Graph())
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}

	out := net.Output().Data().([]float64)
	if len(out) != batch {
		t.Fatalf("expected %d outputs but got %d", batch, len(out))
	}
}

func TestCloneWithBatchCopiesWeights(t *testing.T) {
	net := newTestMLP(t, 3, 1)

	clone, err := net.CloneWithBatch(16)
	if err != nil {
		t.Fatal(err)
	}
	if clone.BatchSize() != 16 {
		t.Fatalf("expected batch size 16 but got %d", clone.BatchSize())
	}
	if clone.Features() != net.Features() {
		t.Fatalf("expected %d features but got %d", net.Features(),
			clone.Features())
	}

	want := learnableData(t, net)
	got := learnableData(t, clone)
	if len(want) != len(got) {
		t.Fatalf("expected %d learnables but got %d", len(want), len(got))
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("learnable %d index %d: expected %v but got %v",
					i, j, want[i][j], got[i][j])
			}
		}
	}
}

func TestSetCopiesWeights(t *testing.T) {
	source := newTestMLP(t, 3, 1)
	dest := newTestMLP(t, 3, 1)

	if err := dest.Set(source); err != nil {
		t.Fatal(err)
	}

	want := learnableData(t, source)
	got := learnableData(t, dest)
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("learnable %d index %d: expected %v but got %v",
					i, j, want[i][j], got[i][j])
			}
		}
	}
}

func TestNewMLPValidatesArguments(t *testing.T) {
	if _, err := NewMLP(3, 1, G.NewGraph(), []int{8}, []bool{true, true},
		G.GlorotN(1.0), []*Activation{TanH()}); err == nil {
		t.Error("expected an error for mismatched biases")
	}
	if _, err := NewMLP(3, 1, G.NewGraph(), []int{8}, []bool{true},
		G.GlorotN(1.0), []*Activation{TanH(), ReLU()}); err == nil {
		t.Error("expected an error for mismatched activations")
	}
	if _, err := NewMLP(0, 1, G.NewGraph(), []int{8}, []bool{true},
		G.GlorotN(1.0), []*Activation{TanH()}); err == nil {
		t.Error("expected an error for zero features")
	}
}
