package models

// Participant holds the payer or payee block of a PIX message.
type Participant struct {
	// Nome is the display name of the account holder.
	Nome string `json:"nome"`

	// CpfCnpj is the tax identifier (CPF or CNPJ) of the account holder.
	CpfCnpj string `json:"cpfCnpj"`

	// Ispb identifies the participant's financial institution.
	Ispb string `json:"ispb"`

	// Agencia is the branch number.
	Agencia string `json:"agencia"`

	// ContaTransacional is the transactional account number.
	ContaTransacional string `json:"contaTransacional"`

	// TipoConta is the account type, CACC (checking) or SVGS (savings).
	TipoConta string `json:"tipoConta"`
}

// PixMessage is the wire shape of a payment notification.
// EndToEndId is the message identity: globally unique, assigned at
// creation, never changed.
type PixMessage struct {
	EndToEndId        string      `json:"endToEndId"`
	Valor             float64     `json:"valor"`
	Pagador           Participant `json:"pagador"`
	Recebedor         Participant `json:"recebedor"`
	CampoLivre        string      `json:"campoLivre"`
	TxId              string      `json:"txId"`
	DataHoraPagamento string      `json:"dataHoraPagamento"`
}

// StoredMessage is the flat storage representation of a PIX message,
// one column per field. The wire package projects it into PixMessage.
type StoredMessage struct {
	EndToEndID                 string
	Valor                      float64
	PagadorNome                string
	PagadorCpfCnpj             string
	PagadorIspb                string
	PagadorAgencia             string
	PagadorContaTransacional   string
	PagadorTipoConta           string
	RecebedorNome              string
	RecebedorCpfCnpj           string
	RecebedorIspb              string
	RecebedorAgencia           string
	RecebedorContaTransacional string
	RecebedorTipoConta         string
	CampoLivre                 string
	TxID                       string
	DataHoraPagamento          string

	// StreamID is the claim tag: the root token of the stream currently
	// holding this message, empty when the message is unclaimed.
	StreamID string

	// CreatedAt is the Unix timestamp when the message was inserted.
	// Claims and deliveries are served oldest-first on this value.
	CreatedAt int64
}
