package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"bank-ledger/cmd"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, snapshot, input string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--snapshot", snapshot, "--log-level", "error"}, args...)
	code := cmd.Run(full, strings.NewReader(input), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func mustRun(t *testing.T, snapshot string, args ...string) string {
	t.Helper()
	res := run(t, snapshot, "", args...)
	if res.code != 0 {
		t.Fatalf("%v exited %d: %s", args, res.code, res.stderr)
	}
	return res.stdout
}

func TestCLI_Scenario(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "accounts.json")

	first := run(t, snapshot, "", "account", "create", "--id", "A1", "--holder", "X", "--balance", "500", "--pin", "1234")
	if first.code != 0 {
		t.Fatalf("create A1 failed: %s", first.stderr)
	}
	if !strings.Contains(first.stdout, "Account created: A1") {
		t.Errorf("unexpected create output: %q", first.stdout)
	}
	if !strings.Contains(first.stderr, "No saved accounts found") {
		t.Errorf("expected empty-ledger notice, got %q", first.stderr)
	}

	if out := mustRun(t, snapshot, "transaction", "deposit", "--id", "A1", "--pin", "1234", "--amount", "100"); !strings.Contains(out, "Deposited: ₹100.00") {
		t.Errorf("unexpected deposit output: %q", out)
	}

	res := run(t, snapshot, "", "transaction", "withdraw", "--id", "A1", "--pin", "1234", "--amount", "700")
	if res.code == 0 || !strings.Contains(res.stderr, "insufficient funds") {
		t.Errorf("expected insufficient funds failure, got code=%d stderr=%q", res.code, res.stderr)
	}

	mustRun(t, snapshot, "account", "create", "--id", "A2", "--holder", "Y", "--pin", "5678")

	if out := mustRun(t, snapshot, "transaction", "transfer", "--from", "A1", "--pin", "1234", "--to", "A2", "--amount", "600"); !strings.Contains(out, "Transferred ₹600.00 from A1 to A2") {
		t.Errorf("unexpected transfer output: %q", out)
	}

	res = run(t, snapshot, "", "transaction", "transfer", "--from", "A1", "--pin", "1234", "--to", "A2", "--amount", "1")
	if res.code == 0 {
		t.Errorf("expected second transfer to fail")
	}

	if out := mustRun(t, snapshot, "query", "balance", "--id", "A1", "--pin", "1234"); !strings.Contains(out, "Balance: ₹0.00") {
		t.Errorf("unexpected A1 balance: %q", out)
	}
	if out := mustRun(t, snapshot, "query", "balance", "--id", "A2", "--pin", "5678"); !strings.Contains(out, "Balance: ₹600.00") {
		t.Errorf("unexpected A2 balance: %q", out)
	}

	out := mustRun(t, snapshot, "query", "history", "--id", "A1", "--pin", "1234")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	wantMessages := []string{
		"Account created with initial balance: ₹500.00",
		"Deposited: ₹100.00",
		"Withdrawn: ₹600.00",
		"Transferred ₹600.00 to account A2",
	}
	if len(lines) != len(wantMessages)+1 || lines[0] != "Transaction History:" {
		t.Fatalf("unexpected history output:\n%s", out)
	}
	stamp := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] (.*)$`)
	for i, want := range wantMessages {
		m := stamp.FindStringSubmatch(lines[i+1])
		if m == nil || m[1] != want {
			t.Errorf("history line %d: expected %q, got %q", i, want, lines[i+1])
		}
	}

	out = mustRun(t, snapshot, "account", "list")
	if !strings.Contains(out, "Account Number: A1, Holder Name: X") || !strings.Contains(out, "Account Number: A2, Holder Name: Y") {
		t.Errorf("unexpected listing: %q", out)
	}
}

func TestCLI_Errors(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "accounts.json")
	mustRun(t, snapshot, "account", "create", "--id", "S1", "--holder", "Z", "--balance", "1000", "--pin", "1111", "--rate", "5")

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"WrongPin", []string{"query", "balance", "--id", "S1", "--pin", "0000"}, "authentication failed"},
		{"UnknownAccount", []string{"query", "balance", "--id", "nope", "--pin", "1111"}, "account not found"},
		{"Duplicate", []string{"account", "create", "--id", "S1", "--holder", "Q", "--pin", "1"}, "account already exists"},
		{"NegativeInitial", []string{"account", "create", "--id", "N1", "--holder", "Q", "--pin", "1", "--balance", "-5"}, "invalid amount"},
		{"BadAmount", []string{"transaction", "deposit", "--id", "S1", "--pin", "1111", "--amount", "ten"}, "invalid amount"},
		{"MissingPin", []string{"transaction", "withdraw", "--id", "S1", "--amount", "1"}, `"pin"`},
		{"BasicInterest", []string{"account", "create", "--id", "B1", "--holder", "Q", "--pin", "1", "--kind", "basic", "--rate", "3"}, "only applies to savings"},
		{"SelfTransfer", []string{"transaction", "transfer", "--from", "S1", "--pin", "1111", "--to", "S1", "--amount", "1"}, "same"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := run(t, snapshot, "", tc.args...)
			if res.code == 0 {
				t.Fatalf("expected failure, got output %q", res.stdout)
			}
			if !strings.Contains(res.stderr, tc.want) {
				t.Errorf("expected stderr to mention %q, got %q", tc.want, res.stderr)
			}
		})
	}

	if out := mustRun(t, snapshot, "transaction", "interest", "--id", "S1", "--pin", "1111"); !strings.Contains(out, "Interest added: ₹50.00") {
		t.Errorf("unexpected interest output: %q", out)
	}
	if out := mustRun(t, snapshot, "query", "balance", "--id", "S1", "--pin", "1111"); !strings.Contains(out, "Balance: ₹1050.00") {
		t.Errorf("failed commands must not change the saved ledger: %q", out)
	}
}

func TestCLI_EmptyList(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "accounts.json")
	if out := mustRun(t, snapshot, "account", "list"); !strings.Contains(out, "No accounts available.") {
		t.Errorf("unexpected output: %q", out)
	}
	if _, err := os.Stat(snapshot); !os.IsNotExist(err) {
		t.Errorf("read-only command should not write a snapshot, stat err = %v", err)
	}
}

func TestCLI_CorruptSnapshot(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "accounts.json")
	if err := os.WriteFile(snapshot, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	res := run(t, snapshot, "", "account", "create", "--id", "A1", "--holder", "X", "--pin", "1")
	if res.code == 0 || !strings.Contains(res.stderr, "error loading accounts") {
		t.Fatalf("expected load failure, got code=%d stderr=%q", res.code, res.stderr)
	}
	raw, _ := os.ReadFile(snapshot)
	if string(raw) != "{broken" {
		t.Errorf("corrupt snapshot must not be overwritten, got %q", raw)
	}
}

func TestCLI_CurrencyFlag(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "accounts.json")
	mustRun(t, snapshot, "account", "create", "--id", "A1", "--holder", "X", "--balance", "12.5", "--pin", "1")
	if out := mustRun(t, snapshot, "--currency", "$", "query", "balance", "--id", "A1", "--pin", "1"); !strings.Contains(out, "Balance: $12.50") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCLI_Repl(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "accounts.json")
	mustRun(t, snapshot, "account", "create", "--id", "A2", "--holder", "Y", "--pin", "5678")

	input := strings.Join([]string{
		`account create --id "A 3" --holder "Mary Ann" --pin 42`,
		"transaction deposit --id A2 --pin 5678 --amount 1",
		"query balance --id A2 --pin 5678",
		"query balance --id A2",
		"bogus",
		`account create --id "unterminated`,
		"exit",
		"account list",
	}, "\n") + "\n"

	res := run(t, snapshot, input, "repl")
	if res.code != 0 {
		t.Fatalf("repl exited %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "Balance: ₹1.00") {
		t.Errorf("expected balance after deposit, got %q", res.stdout)
	}
	if !strings.Contains(res.stderr, `"pin"`) {
		t.Errorf("flags must not carry over between lines, stderr %q", res.stderr)
	}
	if !strings.Contains(res.stderr, "unknown command") {
		t.Errorf("expected unknown command error, got %q", res.stderr)
	}
	if !strings.Contains(res.stderr, "unterminated") {
		t.Errorf("expected quote error, got %q", res.stderr)
	}
	if strings.Contains(res.stdout, "Existing accounts:") {
		t.Errorf("lines after exit must not run")
	}
	if !strings.Contains(res.stdout, "Accounts saved successfully.") {
		t.Errorf("expected save on exit, got %q", res.stdout)
	}

	out := mustRun(t, snapshot, "account", "list")
	if !strings.Contains(out, "Account Number: A 3, Holder Name: Mary Ann") {
		t.Errorf("repl changes not persisted: %q", out)
	}
}

func TestCLI_ReplSavesOnEOF(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "accounts.json")
	res := run(t, snapshot, "account create --id E1 --holder Eve --pin 9\n", "repl")
	if res.code != 0 {
		t.Fatalf("repl exited %d: %s", res.code, res.stderr)
	}
	if out := mustRun(t, snapshot, "account", "list"); !strings.Contains(out, "E1") {
		t.Errorf("expected account saved at end of input, got %q", out)
	}
}

func TestCLI_ReplSavesOnReadError(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "accounts.json")
	input := "account create --id R1 --holder Rae --pin 7\n" + strings.Repeat("x", 2<<20) + "\n"

	res := run(t, snapshot, input, "repl")
	if res.code == 0 || !strings.Contains(res.stderr, "token too long") {
		t.Fatalf("expected read error, got code=%d stderr=%q", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "Accounts saved successfully.") {
		t.Errorf("expected save after read error, got %q", res.stdout)
	}
	if out := mustRun(t, snapshot, "account", "list"); !strings.Contains(out, "Account Number: R1, Holder Name: Rae") {
		t.Errorf("session changes lost after read error: %q", out)
	}
}
