package generator

import (
	"testing"
)

func TestNewID(t *testing.T) {
	id := NewID()
	if len(id) != 32 {
		t.Errorf("Expected 32-char id, got %d chars: %s", len(id), id)
	}
	if id == NewID() {
		t.Error("Expected ids to be unique")
	}
}

func TestRandomMessages(t *testing.T) {
	msgs := RandomMessages("32074986", 10)
	if len(msgs) != 10 {
		t.Fatalf("Expected 10 messages, got %d", len(msgs))
	}

	seen := make(map[string]bool)
	for i, m := range msgs {
		if len(m.EndToEndID) != 32 {
			t.Errorf("Message %d: bad end-to-end id %q", i, m.EndToEndID)
		}
		if seen[m.EndToEndID] {
			t.Errorf("Message %d: duplicate end-to-end id %s", i, m.EndToEndID)
		}
		seen[m.EndToEndID] = true

		if m.RecebedorIspb != "32074986" {
			t.Errorf("Message %d: recipient ispb %q, want 32074986", i, m.RecebedorIspb)
		}
		if m.Valor < 0 || m.Valor >= 1000 {
			t.Errorf("Message %d: valor %f out of range", i, m.Valor)
		}
		if m.PagadorTipoConta != "CACC" && m.PagadorTipoConta != "SVGS" {
			t.Errorf("Message %d: bad account type %q", i, m.PagadorTipoConta)
		}
		if len(m.PagadorCpfCnpj) != 11 {
			t.Errorf("Message %d: bad cpf %q", i, m.PagadorCpfCnpj)
		}
		if m.StreamID != "" {
			t.Errorf("Message %d: generated message must be unclaimed", i)
		}
	}
}
