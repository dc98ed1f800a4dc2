package layout

import (
	"github.com/joseph-ayodele/bankfiles/constants"
	"github.com/joseph-ayodele/bankfiles/internal/entity"
)

const (
	cents  = constants.FormatCurrencyCents
	ddmmyy = constants.FormatDateDDMMYY
	date8  = constants.FormatDateDDMMYYYY
	text   = constants.FormatText
)

// fd declares a catalog field; a non-empty dest marks it used in output.
func fd(name string, start, end int, format constants.Format, dest string) entity.FieldDefinition {
	return entity.FieldDefinition{
		Name:         name,
		Start:        start,
		End:          end,
		Format:       format,
		Destination:  dest,
		UsedInOutput: dest != "",
	}
}

func record(kind constants.Kind, t constants.RecordType, desc string, fields ...entity.FieldDefinition) entity.RecordLayout {
	code, seg := t.Code(kind)
	var signature []entity.PositionCheck
	for _, s := range Signatures(kind) {
		if s.Type == t {
			signature = s.Checks
			break
		}
	}
	return entity.RecordLayout{
		Type:        t,
		Code:        code,
		Segment:     seg,
		Description: desc,
		Signature:   signature,
		Fields:      fields,
	}
}

// DefaultCatalog returns the FEBRABAN-style skeleton for kind. Every call
// builds a new slice, so callers may modify the result freely.
func DefaultCatalog(kind constants.Kind) []entity.RecordLayout {
	if kind == constants.Kind240 {
		return catalog240()
	}
	return catalog400()
}

// Fields common to every CNAB 240 line.
func control240() []entity.FieldDefinition {
	return []entity.FieldDefinition{
		fd("Código do Banco", 1, 3, text, ""),
		fd("Lote de Serviço", 4, 7, text, ""),
		fd("Tipo de Registro", 8, 8, text, ""),
	}
}

func with(base []entity.FieldDefinition, more ...entity.FieldDefinition) []entity.FieldDefinition {
	return append(base, more...)
}

func catalog240() []entity.RecordLayout {
	k := constants.Kind240
	return []entity.RecordLayout{
		record(k, constants.HeaderFile, "Header de Arquivo", with(control240(),
			fd("Tipo de Inscrição da Empresa", 18, 18, text, ""),
			fd("CNPJ da Empresa", 19, 32, text, ""),
			fd("Código do Convênio", 33, 52, text, ""),
			fd("Agência", 53, 57, text, ""),
			fd("Conta Corrente", 59, 70, text, ""),
			fd("Nome da Empresa", 73, 102, text, ""),
			fd("Nome do Banco", 103, 132, text, ""),
			fd("Código Remessa/Retorno", 143, 143, text, ""),
			fd("Data de Geração", 144, 151, date8, ""),
			fd("Hora de Geração", 152, 157, text, ""),
			fd("Sequencial do Arquivo", 158, 163, text, ""),
			fd("Versão do Layout", 164, 166, text, ""),
		)...),
		record(k, constants.HeaderBatch, "Header de Lote", with(control240(),
			fd("Tipo de Operação", 9, 9, text, ""),
			fd("Tipo de Serviço", 10, 11, text, ""),
			fd("Versão do Layout do Lote", 14, 16, text, ""),
			fd("Tipo de Inscrição da Empresa", 18, 18, text, ""),
			fd("CNPJ da Empresa", 19, 33, text, ""),
			fd("Código do Convênio", 34, 53, text, ""),
			fd("Agência", 54, 58, text, ""),
			fd("Conta Corrente", 60, 71, text, ""),
			fd("Nome da Empresa", 74, 103, text, ""),
			fd("Número Remessa/Retorno", 184, 191, text, ""),
			fd("Data de Gravação", 192, 199, date8, ""),
		)...),
		record(k, constants.DetailSegmentP, "Detalhe Segmento P", with(control240(),
			fd("Número do Registro", 9, 13, text, ""),
			fd("Segmento", 14, 14, text, ""),
			fd("Código de Movimento", 16, 17, text, "movimento"),
			fd("Agência", 18, 22, text, "agencia"),
			fd("Conta Corrente", 24, 35, text, "conta"),
			fd("Nosso Número", 38, 57, text, "nosso_numero"),
			fd("Carteira", 58, 58, text, "carteira"),
			fd("Número do Documento", 63, 77, text, "numero_documento"),
			fd("Data de Vencimento", 78, 85, date8, "vencimento"),
			fd("Valor do Título", 86, 100, cents, "valor"),
			fd("Espécie do Título", 107, 108, text, ""),
			fd("Data de Emissão", 110, 117, date8, "emissao"),
			fd("Juros de Mora por Dia", 127, 141, cents, "juros"),
			fd("Valor do Desconto", 151, 165, cents, "desconto"),
			fd("Valor do Abatimento", 181, 195, cents, ""),
			fd("Uso da Empresa", 196, 220, text, ""),
		)...),
		record(k, constants.DetailSegmentQ, "Detalhe Segmento Q", with(control240(),
			fd("Número do Registro", 9, 13, text, ""),
			fd("Segmento", 14, 14, text, ""),
			fd("Tipo de Inscrição do Pagador", 18, 18, text, ""),
			fd("CPF/CNPJ do Pagador", 19, 33, text, "pagador_documento"),
			fd("Nome do Pagador", 34, 73, text, "pagador_nome"),
			fd("Endereço do Pagador", 74, 113, text, "pagador_endereco"),
			fd("Bairro", 114, 128, text, "pagador_bairro"),
			fd("CEP", 129, 133, text, "pagador_cep"),
			fd("Sufixo do CEP", 134, 136, text, "pagador_cep_sufixo"),
			fd("Cidade", 137, 151, text, "pagador_cidade"),
			fd("UF", 152, 153, text, "pagador_uf"),
		)...),
		record(k, constants.DetailSegmentR, "Detalhe Segmento R", with(control240(),
			fd("Número do Registro", 9, 13, text, ""),
			fd("Segmento", 14, 14, text, ""),
			fd("Código do Desconto 2", 18, 18, text, ""),
			fd("Data do Desconto 2", 19, 26, date8, ""),
			fd("Valor do Desconto 2", 27, 41, cents, ""),
			fd("Código da Multa", 66, 66, text, ""),
			fd("Data da Multa", 67, 74, date8, ""),
			fd("Valor da Multa", 75, 89, cents, ""),
		)...),
		record(k, constants.DetailSegmentA, "Detalhe Segmento A", with(control240(),
			fd("Número do Registro", 9, 13, text, ""),
			fd("Segmento", 14, 14, text, ""),
			fd("Banco do Favorecido", 21, 23, text, "favorecido_banco"),
			fd("Agência do Favorecido", 24, 28, text, "favorecido_agencia"),
			fd("Conta do Favorecido", 30, 41, text, "favorecido_conta"),
			fd("Nome do Favorecido", 44, 73, text, "favorecido_nome"),
			fd("Seu Número", 74, 93, text, "seu_numero"),
			fd("Data do Pagamento", 94, 101, date8, "data_pagamento"),
			fd("Valor do Pagamento", 120, 134, cents, "valor_pagamento"),
		)...),
		record(k, constants.DetailSegmentB, "Detalhe Segmento B", with(control240(),
			fd("Número do Registro", 9, 13, text, ""),
			fd("Segmento", 14, 14, text, ""),
			fd("Tipo de Inscrição do Favorecido", 18, 18, text, ""),
			fd("CPF/CNPJ do Favorecido", 19, 32, text, "favorecido_documento"),
			fd("Logradouro", 33, 62, text, "favorecido_logradouro"),
			fd("Número", 63, 67, text, "favorecido_numero"),
			fd("Cidade", 98, 112, text, "favorecido_cidade"),
			fd("CEP", 113, 117, text, "favorecido_cep"),
			fd("UF", 118, 119, text, "favorecido_uf"),
		)...),
		record(k, constants.TrailerBatch, "Trailer de Lote", with(control240(),
			fd("Quantidade de Registros do Lote", 18, 23, text, ""),
			fd("Quantidade de Títulos em Cobrança", 24, 29, text, ""),
			fd("Valor Total dos Títulos", 30, 46, cents, ""),
		)...),
		record(k, constants.TrailerFile, "Trailer de Arquivo", with(control240(),
			fd("Quantidade de Lotes", 18, 23, text, ""),
			fd("Quantidade de Registros", 24, 29, text, ""),
		)...),
	}
}

func catalog400() []entity.RecordLayout {
	k := constants.Kind400
	return []entity.RecordLayout{
		record(k, constants.HeaderFile, "Header de Arquivo",
			fd("Tipo de Registro", 1, 1, text, ""),
			fd("Código de Operação", 2, 2, text, ""),
			fd("Literal Remessa", 3, 9, text, ""),
			fd("Código do Serviço", 10, 11, text, ""),
			fd("Literal Serviço", 12, 26, text, ""),
			fd("Código da Empresa", 27, 46, text, ""),
			fd("Nome da Empresa", 47, 76, text, ""),
			fd("Código do Banco", 77, 79, text, ""),
			fd("Nome do Banco", 80, 94, text, ""),
			fd("Data de Gravação", 95, 100, ddmmyy, ""),
			fd("Sequencial da Remessa", 111, 117, text, ""),
			fd("Sequencial do Registro", 395, 400, text, ""),
		),
		record(k, constants.Detail, "Registro de Transação",
			fd("Tipo de Registro", 1, 1, text, ""),
			fd("Tipo de Inscrição da Empresa", 2, 3, text, ""),
			fd("CNPJ da Empresa", 4, 17, text, ""),
			fd("Identificação da Empresa", 21, 37, text, ""),
			fd("Controle do Participante", 38, 62, text, "controle_participante"),
			fd("Nosso Número", 71, 82, text, "nosso_numero"),
			fd("Carteira", 108, 108, text, "carteira"),
			fd("Código de Ocorrência", 109, 110, text, "ocorrencia"),
			fd("Seu Número", 111, 120, text, "numero_documento"),
			fd("Data de Vencimento", 121, 126, ddmmyy, "vencimento"),
			fd("Valor do Título", 127, 139, cents, "valor"),
			fd("Banco Cobrador", 140, 142, text, ""),
			fd("Espécie do Título", 148, 149, text, ""),
			fd("Data de Emissão", 151, 156, ddmmyy, "emissao"),
			fd("Juros de Mora por Dia", 161, 173, cents, "juros"),
			fd("Valor do Desconto", 180, 192, cents, "desconto"),
			fd("Tipo de Inscrição do Pagador", 219, 220, text, ""),
			fd("CPF/CNPJ do Pagador", 221, 234, text, "pagador_documento"),
			fd("Nome do Pagador", 235, 274, text, "pagador_nome"),
			fd("Endereço do Pagador", 275, 314, text, "pagador_endereco"),
			fd("CEP", 327, 334, text, "pagador_cep"),
			fd("Sequencial do Registro", 395, 400, text, ""),
		),
		record(k, constants.TrailerFile, "Trailer de Arquivo",
			fd("Tipo de Registro", 1, 1, text, ""),
			fd("Sequencial do Registro", 395, 400, text, ""),
		),
	}
}
