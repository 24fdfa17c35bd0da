// Package generator produces random PIX payment notifications for the
// insert endpoint. It is a pure data factory: no state, no claims.
package generator

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pixstream/pixstream/internal/models"
)

var names = []string{
	"Marcos José",
	"Flavio José",
	"Ana Maria",
	"Augusto Gomes",
	"Gomes dos Santos",
}

var accountTypes = []string{"CACC", "SVGS"}

// NewID returns a fresh opaque identifier: a UUIDv4 with the dashes
// stripped. Used for end-to-end ids, tx ids and interaction tokens.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// RandomMessages builds count random messages addressed to the given
// recipient ISPB. Payer details are random; the payee ISPB is always the
// recipient so the messages are eligible for that recipient's streams.
func RandomMessages(ispb string, count int) []models.StoredMessage {
	msgs := make([]models.StoredMessage, count)
	now := time.Now()
	for i := range msgs {
		msgs[i] = models.StoredMessage{
			EndToEndID:                 NewID(),
			Valor:                      randomValor(),
			PagadorNome:                names[rand.IntN(len(names))],
			PagadorCpfCnpj:             randomDigits(11),
			PagadorIspb:                randomDigits(8),
			PagadorAgencia:             randomDigits(4),
			PagadorContaTransacional:   randomDigits(8),
			PagadorTipoConta:           accountTypes[rand.IntN(len(accountTypes))],
			RecebedorNome:              names[rand.IntN(len(names))],
			RecebedorCpfCnpj:           randomDigits(11),
			RecebedorIspb:              ispb,
			RecebedorAgencia:           randomDigits(4),
			RecebedorContaTransacional: randomDigits(8),
			RecebedorTipoConta:         accountTypes[rand.IntN(len(accountTypes))],
			CampoLivre:                 "",
			TxID:                       NewID(),
			DataHoraPagamento:          now.UTC().Format(time.RFC3339Nano),
			CreatedAt:                  now.Unix(),
		}
	}
	return msgs
}

// randomValor returns an amount in [0, 1000) rounded to two decimals.
func randomValor() float64 {
	return float64(rand.IntN(100000)) / 100
}

func randomDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rand.IntN(10))
	}
	return string(b)
}
