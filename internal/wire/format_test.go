package wire

import (
	"encoding/json"
	"testing"

	"github.com/pixstream/pixstream/internal/models"
)

func TestFormatMessage(t *testing.T) {
	stored := models.StoredMessage{
		EndToEndID:                 "a4e2708a5e004ec49b954b435636fbbc",
		Valor:                      150.50,
		PagadorNome:                "Pagador 1",
		PagadorCpfCnpj:             "12345678901",
		PagadorIspb:                "61740253",
		PagadorAgencia:             "0001",
		PagadorContaTransacional:   "00012345",
		PagadorTipoConta:           "CACC",
		RecebedorNome:              "Recebedor 1",
		RecebedorCpfCnpj:           "10987654321",
		RecebedorIspb:              "32074986",
		RecebedorAgencia:           "0002",
		RecebedorContaTransacional: "54321000",
		RecebedorTipoConta:         "SVGS",
		TxID:                       "tx-id-1",
		DataHoraPagamento:          "2024-09-02T01:48:27.447Z",
		StreamID:                   "should-not-leak",
	}

	msg := FormatMessage(stored)

	if msg.EndToEndId != stored.EndToEndID {
		t.Errorf("EndToEndId: got %s", msg.EndToEndId)
	}
	if msg.Valor != 150.50 {
		t.Errorf("Valor: got %f", msg.Valor)
	}
	if msg.Pagador.Ispb != "61740253" || msg.Recebedor.Ispb != "32074986" {
		t.Errorf("Ispb mismatch: pagador %s, recebedor %s", msg.Pagador.Ispb, msg.Recebedor.Ispb)
	}
	if msg.Recebedor.ContaTransacional != "54321000" {
		t.Errorf("ContaTransacional: got %s", msg.Recebedor.ContaTransacional)
	}

	// The claim tag is storage-internal and must not appear on the wire.
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"endToEndId", "valor", "pagador", "recebedor", "campoLivre", "txId", "dataHoraPagamento"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Wire shape missing field %s", key)
		}
	}
	if len(fields) != 7 {
		t.Errorf("Wire shape has %d fields, want 7", len(fields))
	}
}

func TestFormatMessagesPreservesOrder(t *testing.T) {
	msgs := FormatMessages([]models.StoredMessage{
		{EndToEndID: "first"},
		{EndToEndID: "second"},
	})
	if len(msgs) != 2 || msgs[0].EndToEndId != "first" || msgs[1].EndToEndId != "second" {
		t.Errorf("Order not preserved: %v", msgs)
	}
}
