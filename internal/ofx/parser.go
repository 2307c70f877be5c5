package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/ledger-audit/internal/model"
	"github.com/aclindsa/ofxgo"
)

// Options labels the records produced from a statement. OFX carries no
// ledger taxonomy, so group and subgroup come from the caller.
type Options struct {
	Group    string
	Subgroup string
	Category string // Used when the transaction type implies no category
	Account  string // Overrides the statement's account ID
	Source   string
}

// typeCategories maps OFX transaction types to ledger categories.
var typeCategories = map[string]string{
	"INT":    "RECEITA APLICAÇÕES",
	"DIV":    "RECEITA APLICAÇÕES",
	"FEE":    "TARIFAS BANCÁRIAS",
	"SRVCHG": "TARIFAS BANCÁRIAS",
	"XFER":   "TRANSF. ENTRE CONTAS",
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX statement parsing.
type Parser struct {
	opts Options
}

// NewParser creates a new OFX parser.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into ledger records in statement order.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Record, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			records = p.appendStatement(records, stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			records = p.appendStatement(records, stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))
		}
	}

	model.AssignOccurrences(records)

	slog.Info("Parsed OFX file",
		"source", p.opts.Source,
		"total_records", len(records),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return records, nil
}

func (p *Parser) appendStatement(records []model.Record, list *ofxgo.TransactionList, accountID string) []model.Record {
	if list == nil {
		return records
	}
	if p.opts.Account != "" {
		accountID = p.opts.Account
	}
	for _, tx := range list.Transactions {
		records = append(records, p.convertTransaction(tx, accountID, len(records)+1))
	}
	return records
}

// convertTransaction converts an OFX transaction to a ledger record.
// Credits become entries and debits exits.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, accountID string, seq int) model.Record {
	amount, _ := tx.TrnAmt.Float64()

	var in, out float64
	if amount >= 0 {
		in = amount
	} else {
		out = amount
	}

	category, ok := typeCategories[fmt.Sprintf("%v", tx.TrnType)]
	if !ok {
		category = p.opts.Category
	}

	posted := tx.DtPosted.Time.UTC()
	date := time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC)

	r := model.NewRecord(date, p.opts.Group, p.opts.Subgroup, category, p.extractMerchantName(tx), accountID, in, out)
	r.Source = p.opts.Source
	r.Seq = seq
	r.ID = string(tx.FiTID)
	return r
}

// extractMerchantName tries to get a clean counterparty name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// PAYEE is cleaner than NAME when present
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"PIX ENVIADO ",
		"PIX RECEBIDO ",
		"TED ENVIADA ",
		"TED RECEBIDA ",
		"PAGAMENTO ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "DD/MM " date
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PAYMENT",
		"PIX",
		"TED",
		"DOC",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// Accounts extracts the unique account IDs of an OFX file.
func (p *Parser) Accounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			accounts = append(accounts, id)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			add(string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			add(string(stmt.CCAcctFrom.AcctID))
		}
	}

	return accounts, nil
}
