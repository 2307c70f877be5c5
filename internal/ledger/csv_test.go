package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/ledger-audit/internal/common"
	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/Veraticus/ledger-audit/internal/ofx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Content.Data;Content.Grupo;Content.Subgrupo;Content.Natureza;Content.FORNECEDOR;Content.Entrada (R$);Content.Saída (R$);Name\n" +
	"15/03/2024;bariloche;Custo do ativo;Obra;Construtora Alfa;;1.500,00;FluxoBariloche\n" +
	"01/02/2024;Northside;Financeiro;Aporte SCP;Socio;3.484.400,00;;FluxoLifecon5 \n" +
	"31/02/2024;Agata;Financeiro;Tarifa;Banco;;10,00;FluxoAgata\n" +
	"01/02/2024;Agata;;TRANSF. ENTRE CONTAS;;;-200,50;FluxoAgata\n" +
	"10/04/2024;Agata;Receita;Vendas;Cliente;abc;;FluxoAgata\n"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{input: "1.234,56", want: 1234.56, wantOK: true},
		{input: "3.484.400,00", want: 3484400, wantOK: true},
		{input: " 10,5 ", want: 10.5, wantOK: true},
		{input: "-200,50", want: -200.5, wantOK: true},
		{input: "", want: 0, wantOK: true},
		{input: "abc", want: 0, wantOK: false},
		{input: "R$ 10,00", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("05/01/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2024-01-05")
	assert.Error(t, err)
	_, err = ParseDate("31/02/2024")
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	records, stats, err := LoadCSV(strings.NewReader(sampleCSV), "fluxo.csv")
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 4, stats.Loaded)
	assert.Equal(t, 1, stats.InvalidDates)
	assert.Equal(t, 1, stats.BadAmounts)
	require.Len(t, records, 4)

	// Sorted by date, file order kept within a date.
	contribution := records[0]
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), contribution.Date)
	assert.Equal(t, "APORTE SCP", contribution.Category)
	assert.InDelta(t, 3484400.0, contribution.AmountIn, 1e-9)
	assert.Equal(t, "FluxoLifecon5", contribution.Account, "account is trimmed, not upper-cased")
	assert.Equal(t, 2, contribution.Seq)
	assert.Equal(t, "fluxo.csv", contribution.Source)
	assert.Len(t, contribution.ID, 16)

	transfer := records[1]
	assert.Equal(t, model.Unspecified, transfer.Subgroup)
	assert.Equal(t, model.Unspecified, transfer.Supplier)
	assert.InDelta(t, -200.5, transfer.AmountOut, 1e-9)

	work := records[2]
	assert.Equal(t, "BARILOCHE", work.Group)
	assert.InDelta(t, -1500.0, work.AmountOut, 1e-9, "positive exits are negated")

	sale := records[3]
	assert.Equal(t, 0.0, sale.AmountIn, "unparsable amounts read as zero")

	for _, r := range records {
		assert.LessOrEqual(t, r.AmountOut, 0.0)
	}
}

func TestLoadCSV_DuplicateLinesKeepDistinctIDs(t *testing.T) {
	data := "Data;Grupo;Subgrupo;Natureza;FORNECEDOR;Entrada (R$);Saída (R$);Name\n" +
		"01/01/2024;A;B;C;D;10,00;;X\n" +
		"01/01/2024;A;B;C;D;10,00;;X\n"

	records, _, err := LoadCSV(strings.NewReader(data), "dup.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, 1, records[0].Occurrence)
	assert.Equal(t, 2, records[1].Occurrence)
}

func TestLoadCSV_NegativeEntryKeepsNet(t *testing.T) {
	data := "Data;Grupo;Subgrupo;Natureza;FORNECEDOR;Entrada (R$);Saída (R$);Name\n" +
		"05/01/2024;A;RECEITA;ESTORNO;CLIENTE;-100,00;;X\n" +
		"06/01/2024;A;RECEITA;ESTORNO;CLIENTE;-100,00;50,00;X\n"

	records, _, err := LoadCSV(strings.NewReader(data), "reversal.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.InDelta(t, -100.0, records[0].Net(), 1e-9)
	assert.InDelta(t, 0.0, records[0].AmountIn, 1e-9)
	assert.InDelta(t, -100.0, records[0].AmountOut, 1e-9)
	assert.InDelta(t, -150.0, records[1].Net(), 1e-9)
}

func TestLoadCSV_InsertedLineKeepsOtherIDs(t *testing.T) {
	header := "Data;Grupo;Subgrupo;Natureza;FORNECEDOR;Entrada (R$);Saída (R$);Name\n"
	lines := "10/01/2024;A;CUSTO;OBRA;ALFA;;1.000,00;X\n" +
		"10/01/2024;A;CUSTO;OBRA;ALFA;;1.000,00;X\n" +
		"20/01/2024;A;CUSTO;OBRA;BETA;;700,00;X\n"

	first, _, err := LoadCSV(strings.NewReader(header+lines), "fluxo.csv")
	require.NoError(t, err)

	later, _, err := LoadCSV(strings.NewReader(header+"02/01/2024;A;CUSTO;OBRA;GAMA;;1.500,00;X\n"+lines), "fluxo-atualizado.csv")
	require.NoError(t, err)
	require.Len(t, later, 4)

	ids := make(map[string]bool)
	for _, r := range later {
		ids[r.ID] = true
	}
	for _, r := range first {
		assert.True(t, ids[r.ID], "record %s keeps its ID", r.Supplier)
	}
}

func TestLoadCSV_ByteOrderMark(t *testing.T) {
	data := "\xEF\xBB\xBFData;Entrada (R$);Saída (R$)\n01/01/2024;5,00;\n"

	records, _, err := LoadCSV(strings.NewReader(data), "bom.csv")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 5.0, records[0].AmountIn, 1e-9)
	assert.Equal(t, model.Unspecified, records[0].Account)
}

func TestLoadCSV_Errors(t *testing.T) {
	_, _, err := LoadCSV(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, common.ErrNoRecords)

	_, _, err = LoadCSV(strings.NewReader("Grupo;Natureza\nA;B\n"), "bad.csv")
	assert.ErrorIs(t, err, ErrMissingColumn)

	records, stats, err := LoadCSV(strings.NewReader("Data;Entrada (R$);Saída (R$)\n"), "header.csv")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, stats.Rows)
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("Fluxo Financeiro.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = DetectFormat("extrato.qfx")
	require.NoError(t, err)
	assert.Equal(t, FormatOFX, f)

	_, err = DetectFormat("planilha.xlsx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fluxo.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	records, stats, err := LoadFile(context.Background(), path, ofx.Options{})
	require.NoError(t, err)
	assert.Len(t, records, 4)
	assert.Equal(t, 4, stats.Loaded)
	assert.Equal(t, "fluxo.csv", records[0].Source)

	_, _, err = LoadFile(context.Background(), filepath.Join(dir, "missing.csv"), ofx.Options{})
	assert.Error(t, err)
}
