// nova-cli talks to a running novad and prints JSON responses. Queries take
// positional arguments; operations read their fields from flags.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const usage = `usage: nova-cli [-addr URL] <command> [args]

queries:
  status                         global counters and latches
  allocation                     pool sizes and issuance headroom
  balance <addr>                 token balance
  contribution <addr>            native contribution and referrer
  stake <addr>                   open stake
  proposals                      list proposals
  proposal <id>                  one proposal

operations (fields via flags after the command):
  purchase   -caller A -paid N [-referrer A]
  refund     -caller A
  withdraw   -caller A
  end-sale   -caller A
  set-stage  -caller A -stage private|presale|public|ended
  team-claim -caller A
  stake-op   -caller A -amount N
  unstake    -caller A
  burn       -caller A -amount N
  propose    -caller A -description TEXT
  vote       -caller A -id N [-against]
  execute    -caller A -id N
  lock       -caller A -pool A
  distribute -caller A -recipient A -amount N
`

func main() {
	addr := flag.String("addr", envOr("NOVA_ADDR", "http://localhost:8080"), "novad base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cli := &client{base: *addr, http: &http.Client{Timeout: 10 * time.Second}}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "status":
		err = cli.get("/v1/status")
	case "allocation":
		err = cli.get("/v1/allocation")
	case "balance":
		err = cli.getArg("/v1/balance/%s", rest)
	case "contribution":
		err = cli.getArg("/v1/contribution/%s", rest)
	case "stake":
		err = cli.getArg("/v1/stake/%s", rest)
	case "proposals":
		err = cli.get("/v1/governance/proposals")
	case "proposal":
		err = cli.getArg("/v1/governance/proposals/%s", rest)
	case "purchase":
		err = opCmd(cli, rest, "/v1/sale/purchase", func(fs *flag.FlagSet, body map[string]any) {
			strField(fs, body, "caller", "calling account")
			strField(fs, body, "paid", "native base units to pay")
			optStrField(fs, body, "referrer", "referrer account")
		})
	case "refund":
		err = opCmd(cli, rest, "/v1/sale/refund", callerOnly)
	case "withdraw":
		err = opCmd(cli, rest, "/v1/sale/withdraw", callerOnly)
	case "end-sale":
		err = opCmd(cli, rest, "/v1/sale/end", callerOnly)
	case "set-stage":
		err = opCmd(cli, rest, "/v1/sale/stage", func(fs *flag.FlagSet, body map[string]any) {
			strField(fs, body, "caller", "calling account")
			strField(fs, body, "stage", "target stage")
		})
	case "team-claim":
		err = opCmd(cli, rest, "/v1/team/claim", callerOnly)
	case "stake-op":
		err = opCmd(cli, rest, "/v1/stake", func(fs *flag.FlagSet, body map[string]any) {
			strField(fs, body, "caller", "calling account")
			strField(fs, body, "amount", "token base units")
		})
	case "unstake":
		err = opCmd(cli, rest, "/v1/unstake", callerOnly)
	case "burn":
		err = opCmd(cli, rest, "/v1/burn", func(fs *flag.FlagSet, body map[string]any) {
			strField(fs, body, "caller", "calling account")
			strField(fs, body, "amount", "token base units")
		})
	case "propose":
		err = opCmd(cli, rest, "/v1/governance/proposals", func(fs *flag.FlagSet, body map[string]any) {
			strField(fs, body, "caller", "calling account")
			strField(fs, body, "description", "proposal text")
		})
	case "vote":
		err = voteCmd(cli, rest)
	case "execute":
		err = idCmd(cli, rest, "/v1/governance/proposals/%d/execute")
	case "lock":
		err = opCmd(cli, rest, "/v1/liquidity/lock", func(fs *flag.FlagSet, body map[string]any) {
			strField(fs, body, "caller", "calling account")
			strField(fs, body, "pool_addr", "liquidity pool account")
		})
	case "distribute":
		err = opCmd(cli, rest, "/v1/ecosystem/distribute", func(fs *flag.FlagSet, body map[string]any) {
			strField(fs, body, "caller", "calling account")
			strField(fs, body, "recipient", "grant recipient")
			strField(fs, body, "amount", "token base units")
		})
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type client struct {
	base string
	http *http.Client
}

func (c *client) get(path string) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func (c *client) getArg(format string, rest []string) error {
	if len(rest) != 1 {
		return fmt.Errorf("expected exactly one argument")
	}
	return c.get(fmt.Sprintf(format, rest[0]))
}

func (c *client) post(path string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		raw = pretty.Bytes()
	}
	fmt.Println(string(bytes.TrimSpace(raw)))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

// opCmd parses the command's flags into a JSON body and posts it.
func opCmd(c *client, rest []string, path string, fields func(*flag.FlagSet, map[string]any)) error {
	fs := flag.NewFlagSet(path, flag.ExitOnError)
	body := map[string]any{}
	fields(fs, body)
	if err := fs.Parse(rest); err != nil {
		return err
	}
	resolve(body)
	return c.post(path, body)
}

func voteCmd(c *client, rest []string) error {
	fs := flag.NewFlagSet("vote", flag.ExitOnError)
	caller := fs.String("caller", "", "calling account")
	id := fs.Uint64("id", 0, "proposal id")
	against := fs.Bool("against", false, "vote against instead of in favor")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	return c.post(fmt.Sprintf("/v1/governance/proposals/%d/vote", *id), map[string]any{
		"caller":   *caller,
		"in_favor": !*against,
	})
}

func idCmd(c *client, rest []string, format string) error {
	fs := flag.NewFlagSet("execute", flag.ExitOnError)
	caller := fs.String("caller", "", "calling account")
	id := fs.Uint64("id", 0, "proposal id")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	return c.post(fmt.Sprintf(format, *id), map[string]any{"caller": *caller})
}

func callerOnly(fs *flag.FlagSet, body map[string]any) {
	strField(fs, body, "caller", "calling account")
}

// strField registers a required string flag whose value lands in the body
// under the same name.
func strField(fs *flag.FlagSet, body map[string]any, name, help string) {
	body[name] = fs.String(name, "", help)
}

func optStrField(fs *flag.FlagSet, body map[string]any, name, help string) {
	body[name] = fs.String(name, "", help)
}

// resolve dereferences the flag pointers stored by strField, dropping empty
// optional fields.
func resolve(body map[string]any) {
	for k, v := range body {
		if p, ok := v.(*string); ok {
			if *p == "" {
				delete(body, k)
				continue
			}
			body[k] = *p
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
