// Package wire projects stored message rows into the wire shape clients
// receive. The projection is pure field renaming; it never touches
// claims or delivery state.
package wire

import "github.com/pixstream/pixstream/internal/models"

// FormatMessage maps a flat storage row to the nested wire shape.
func FormatMessage(m models.StoredMessage) models.PixMessage {
	return models.PixMessage{
		EndToEndId: m.EndToEndID,
		Valor:      m.Valor,
		Pagador: models.Participant{
			Nome:              m.PagadorNome,
			CpfCnpj:           m.PagadorCpfCnpj,
			Ispb:              m.PagadorIspb,
			Agencia:           m.PagadorAgencia,
			ContaTransacional: m.PagadorContaTransacional,
			TipoConta:         m.PagadorTipoConta,
		},
		Recebedor: models.Participant{
			Nome:              m.RecebedorNome,
			CpfCnpj:           m.RecebedorCpfCnpj,
			Ispb:              m.RecebedorIspb,
			Agencia:           m.RecebedorAgencia,
			ContaTransacional: m.RecebedorContaTransacional,
			TipoConta:         m.RecebedorTipoConta,
		},
		CampoLivre:        m.CampoLivre,
		TxId:              m.TxID,
		DataHoraPagamento: m.DataHoraPagamento,
	}
}

// FormatMessages maps a batch of rows, preserving order.
func FormatMessages(msgs []models.StoredMessage) []models.PixMessage {
	out := make([]models.PixMessage, len(msgs))
	for i, m := range msgs {
		out[i] = FormatMessage(m)
	}
	return out
}
