// Package sigmacli is the command line interface to the sigma interpreter:
// key generation, distributed signing rounds and verification of spending
// policies.
package sigmacli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/drand/kyber/util/random"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/zutxo/sigma/ast"
	"github.com/zutxo/sigma/common/log"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/eval"
	"github.com/zutxo/sigma/fs"
	"github.com/zutxo/sigma/hintstore"
	"github.com/zutxo/sigma/interpreter"
	"github.com/zutxo/sigma/key"
	"github.com/zutxo/sigma/metrics"
	"github.com/zutxo/sigma/metrics/pprof"
	"github.com/zutxo/sigma/proof"
	"github.com/zutxo/sigma/sigma"
)

// default output of the commands, logs go to stderr.
var output io.Writer = os.Stdout

// Automatically set through -ldflags
// Example: go install -ldflags "-X main.version=`git describe --tags`
//
//	-X main.buildDate=`date -u +%d/%m/%Y@%H:%M:%S` -X main.gitCommit=`git rev-parse HEAD`"
var (
	version   = "master"
	gitCommit = "none"
	buildDate = "unknown"
)

// ErrInvalidProof is returned by verify when a proof does not verify.
var ErrInvalidProof = errors.New("invalid proof")

const defaultFolderName = ".sigma"

// DefaultFolder returns the folder used when none is given.
func DefaultFolder() string {
	home, err := fs.HomeFolder()
	if err != nil {
		return defaultFolderName
	}
	return path.Join(home, defaultFolderName)
}

var folderFlag = &cli.StringFlag{
	Name:  "folder",
	Value: DefaultFolder(),
	Usage: "Folder to keep keys, hints and the sigma.toml config, with absolute path.",
}

var configFlag = &cli.StringFlag{
	Name:  "config",
	Usage: "Path of a TOML config file to use instead of the one in the folder.",
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "If set, verbosity is at the debug level",
}

var metricsFlag = &cli.StringFlag{
	Name:  "metrics",
	Usage: "Launch a metrics server at the specified (host:)port.",
}

var schemeFlag = &cli.StringFlag{
	Name:  "scheme",
	Usage: "Group of the generated key. Defaults to the scheme of the config.",
}

var kindFlag = &cli.StringFlag{
	Name:  "kind",
	Value: string(key.DLog),
	Usage: "Kind of key to generate: dlog or dhtuple.",
}

var policyFlag = &cli.StringFlag{
	Name:     "policy",
	Required: true,
	Usage:    "TOML policy file describing the spending condition.",
}

var keysFlag = &cli.StringSliceFlag{
	Name:  "key",
	Usage: "Name of a key of the store to sign with. Can be repeated.",
}

var messageFlag = &cli.StringFlag{
	Name:  "message",
	Usage: "Hex encoded message the proof is bound to.",
}

var heightFlag = &cli.IntFlag{
	Name:  "height",
	Usage: "Height of the spending context.",
}

var hintsFlag = &cli.StringSliceFlag{
	Name:  "hints",
	Usage: "JSON hint file received from a co-signer. Can be repeated.",
}

var sessionFlag = &cli.StringFlag{
	Name:  "session",
	Usage: "Id of the signing session in the hint store.",
}

var outFlag = &cli.StringFlag{
	Name:  "out",
	Usage: "Write the result into this file instead of stdout.",
}

var proofFlag = &cli.StringFlag{
	Name:     "proof",
	Required: true,
	Usage:    "Hex encoded partial proof.",
}

var realFlag = &cli.StringSliceFlag{
	Name:  "real",
	Usage: "Name of a key proven by the author of the proof. Can be repeated.",
}

var simulatedFlag = &cli.StringSliceFlag{
	Name:  "simulated",
	Usage: "Name of a key simulated in the proof. Can be repeated.",
}

// CLI returns the sigma command line application.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "sigma"
	app.Version = version
	app.Usage = "prove and verify sigma spending policies"
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(output, "sigma %v (date %v, commit %v)\n", version, buildDate, gitCommit)
	}
	app.Flags = toArray(verboseFlag, folderFlag, configFlag, metricsFlag)
	app.Before = startMetrics
	app.Commands = []*cli.Command{
		{
			Name:      "keygen",
			Usage:     "Generate a key pair and store it in the key folder.",
			ArgsUsage: "<name> of the key in the store",
			Flags:     toArray(schemeFlag, kindFlag),
			Action:    keygenCmd,
		},
		{
			Name: "commit",
			Usage: "Draw commitments for the keys given with --key, keep them in a " +
				"new or existing signing session and output the public part for co-signers.",
			Flags:  toArray(policyFlag, keysFlag, heightFlag, sessionFlag, outFlag),
			Action: commitCmd,
		},
		{
			Name: "prove",
			Usage: "Prove the policy with the keys given with --key, completed by " +
				"hints of co-signers and of the signing session.",
			Flags:  toArray(policyFlag, keysFlag, messageFlag, heightFlag, hintsFlag, sessionFlag, outFlag),
			Action: proveCmd,
		},
		{
			Name:      "verify",
			Usage:     "Verify proofs of the policy.",
			ArgsUsage: "<proof>... hex encoded proofs",
			Flags:     toArray(policyFlag, messageFlag, heightFlag),
			Action:    verifyCmd,
		},
		{
			Name: "extract",
			Usage: "Extract from a partial proof the hints a co-signer needs to " +
				"complete it.",
			Flags:  toArray(policyFlag, proofFlag, heightFlag, realFlag, simulatedFlag, sessionFlag, outFlag),
			Action: extractCmd,
		},
	}
	return app
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}

func logger(c *cli.Context, level int) log.Logger {
	if c.Bool(verboseFlag.Name) {
		level = log.DebugLevel
	}
	return log.New(os.Stderr, level, false)
}

func startMetrics(c *cli.Context) error {
	if !c.IsSet(metricsFlag.Name) {
		return nil
	}
	_, err := metrics.Start(logger(c, log.InfoLevel), c.String(metricsFlag.Name), pprof.WithProfile())
	return err
}

// env is what every command reads from the flags and the config.
type env struct {
	conf *Config
	log  log.Logger
	keys key.Store
}

func newEnv(c *cli.Context) (*env, error) {
	folder := c.String(folderFlag.Name)
	conf, err := loadConfig(folder, c.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	keys, err := key.NewFileStore(conf.KeyFolder)
	if err != nil {
		return nil, err
	}
	return &env{conf: conf, log: logger(c, conf.level), keys: keys}, nil
}

// reduced is a compiled policy and the proposition it reduces to in the
// context of the height flag.
type reduced struct {
	interp *interpreter.Interpreter
	tree   *ast.ErgoTree
	id     interpreter.TreeID
	ctx    eval.Context
	prop   sigma.SigmaBoolean
}

func (e *env) reduce(c *cli.Context) (*reduced, error) {
	policyPath := c.String(policyFlag.Name)
	raw, err := os.ReadFile(policyPath)
	if err != nil {
		return nil, err
	}
	policy, err := loadPolicy(policyPath)
	if err != nil {
		return nil, err
	}
	tree, err := policy.Compile(e.keys)
	if err != nil {
		return nil, err
	}
	interp, err := e.conf.interpreter(e.log)
	if err != nil {
		return nil, err
	}
	r := &reduced{
		interp: interp,
		tree:   tree,
		id:     interpreter.TreeIDFromBytes(raw),
		ctx:    &eval.TxContext{CurrentHeight: int32(c.Int(heightFlag.Name))},
	}
	interp.Cache().Add(r.id, tree)
	res, err := interp.Reduce(tree, r.ctx, e.conf.limit())
	if err != nil {
		return nil, err
	}
	r.prop = res.Prop
	return r, nil
}

// secrets loads the keys named by the key flag.
func (e *env) secrets(c *cli.Context) ([]proof.Secret, error) {
	var out []proof.Secret
	for _, name := range c.StringSlice(keysFlag.Name) {
		p, err := e.keys.LoadKeyPair(name)
		if err != nil {
			return nil, err
		}
		if p.Scheme.Name != e.conf.Scheme {
			return nil, fmt.Errorf("key %q is a %s key, config uses %s", name, p.Scheme.Name, e.conf.Scheme)
		}
		out = append(out, p.Secret())
	}
	return out, nil
}

func (e *env) images(names []string) ([]sigma.SigmaBoolean, error) {
	out := make([]sigma.SigmaBoolean, len(names))
	for i, name := range names {
		pub, err := e.keys.LoadPublic(name)
		if err != nil {
			return nil, err
		}
		out[i] = pub.Image
	}
	return out, nil
}

func (e *env) openHints(r *reduced) (*hintstore.Store, error) {
	if _, err := fs.CreateSecureFolder(e.conf.HintFolder); err != nil {
		return nil, err
	}
	return hintstore.Open(e.log, e.conf.HintFolder, r.interp.Config().Group(), nil)
}

func sessionID(c *cli.Context) (uuid.UUID, bool, error) {
	if !c.IsSet(sessionFlag.Name) {
		return uuid.UUID{}, false, nil
	}
	id, err := uuid.Parse(c.String(sessionFlag.Name))
	return id, true, err
}

func message(c *cli.Context) ([]byte, error) {
	return hex.DecodeString(c.String(messageFlag.Name))
}

// writeOut writes b to the out flag file, or to the output.
func writeOut(c *cli.Context, b []byte) error {
	if c.IsSet(outFlag.Name) {
		return os.WriteFile(c.String(outFlag.Name), b, 0600)
	}
	_, err := fmt.Fprintln(output, string(b))
	return err
}

func keygenCmd(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("missing key name argument")
	}
	name := c.Args().First()
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	schemeName := e.conf.Scheme
	if c.IsSet(schemeFlag.Name) {
		schemeName = c.String(schemeFlag.Name)
	}
	sch, err := crypto.SchemeFromName(schemeName)
	if err != nil {
		return err
	}
	if _, err := e.keys.LoadKeyPair(name); err == nil {
		return fmt.Errorf("key %q already present in %s", name, e.conf.KeyFolder)
	}

	var pair *key.Pair
	switch key.Kind(c.String(kindFlag.Name)) {
	case key.DLog:
		pair = key.NewDLogPair(sch, random.New())
	case key.DHTuple:
		pair = key.NewDHTuplePair(sch, random.New())
	default:
		return fmt.Errorf("%w: %q", key.ErrUnknownKind, c.String(kindFlag.Name))
	}
	if err := e.keys.SaveKeyPair(name, pair); err != nil {
		return err
	}
	e.log.Infow("generated key", "name", name, "scheme", sch.Name, "kind", pair.Kind)
	return toml.NewEncoder(output).Encode(pair.Public().TOML())
}

func commitCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	r, err := e.reduce(c)
	if err != nil {
		return err
	}
	secrets, err := e.secrets(c)
	if err != nil {
		return err
	}
	bag, err := r.interp.NewProver(secrets...).GenerateCommitments(r.prop)
	if err != nil {
		return err
	}

	store, err := e.openHints(r)
	if err != nil {
		return err
	}
	defer store.Close()
	ctx := context.Background()
	id, ok, err := sessionID(c)
	if err != nil {
		return err
	}
	if !ok {
		sess, err := store.NewSession(ctx, r.prop, time.Now().Unix())
		if err != nil {
			return err
		}
		id = sess.ID
	}
	if err := store.Put(ctx, id, bag); err != nil {
		return err
	}
	e.log.Infow("commitments stored", "session", id.String(), "hints", bag.Len())

	buff, err := hintstore.MarshalBag(bag.Public())
	if err != nil {
		return err
	}
	if err := writeOut(c, buff); err != nil {
		return err
	}
	if c.IsSet(outFlag.Name) {
		fmt.Fprintf(output, "session %s\n", id)
	}
	return nil
}

func proveCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	r, err := e.reduce(c)
	if err != nil {
		return err
	}
	secrets, err := e.secrets(c)
	if err != nil {
		return err
	}
	msg, err := message(c)
	if err != nil {
		return err
	}
	g := r.interp.Config().Group()

	hints := proof.NewHintsBag()
	for _, file := range c.StringSlice(hintsFlag.Name) {
		buff, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		bag, err := hintstore.UnmarshalBag(g, buff)
		if err != nil {
			return fmt.Errorf("hints %s: %w", file, err)
		}
		hints = hints.Merge(bag)
	}
	if id, ok, err := sessionID(c); err != nil {
		return err
	} else if ok {
		store, err := e.openHints(r)
		if err != nil {
			return err
		}
		defer store.Close()
		stored, err := store.Get(context.Background(), id)
		if err != nil {
			return err
		}
		hints = stored.Merge(hints)
	}

	pr, total, err := r.interp.Prove(r.tree, r.ctx, msg, r.interp.NewProver(secrets...), hints, e.conf.limit())
	if err != nil {
		return err
	}
	e.log.Infow("proof generated", "bytes", len(pr), "cost", int64(total))
	return writeOut(c, []byte(hex.EncodeToString(pr)))
}

func verifyCmd(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("missing proof argument")
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	r, err := e.reduce(c)
	if err != nil {
		return err
	}
	msg, err := message(c)
	if err != nil {
		return err
	}
	inputs := make([]interpreter.Input, c.NArg())
	for i, arg := range c.Args().Slice() {
		pr, err := hex.DecodeString(arg)
		if err != nil {
			return fmt.Errorf("proof %d: %w", i, err)
		}
		inputs[i] = interpreter.Input{TreeID: r.id, Context: r.ctx, Proof: pr, Message: msg, Limit: e.conf.limit()}
	}
	results, err := interpreter.NewBatchVerifier(r.interp).VerifyAll(c.Context, inputs)
	for _, res := range results {
		switch {
		case res.Err != nil:
			fmt.Fprintf(output, "proof %d: error: %v\n", res.Index, res.Err)
		case res.Valid:
			fmt.Fprintf(output, "proof %d: valid (cost %d)\n", res.Index, res.Cost)
		default:
			fmt.Fprintf(output, "proof %d: invalid (cost %d)\n", res.Index, res.Cost)
		}
	}
	if err != nil {
		return err
	}
	for _, res := range results {
		if !res.Valid {
			return ErrInvalidProof
		}
	}
	return nil
}

func extractCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	r, err := e.reduce(c)
	if err != nil {
		return err
	}
	pr, err := hex.DecodeString(c.String(proofFlag.Name))
	if err != nil {
		return err
	}
	realLeaves, err := e.images(c.StringSlice(realFlag.Name))
	if err != nil {
		return err
	}
	simulatedLeaves, err := e.images(c.StringSlice(simulatedFlag.Name))
	if err != nil {
		return err
	}
	bag, err := proof.BagForMultisig(r.interp.Config().Group(), r.prop, pr, realLeaves, simulatedLeaves)
	if err != nil {
		return err
	}
	if id, ok, err := sessionID(c); err != nil {
		return err
	} else if ok {
		store, err := e.openHints(r)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Put(context.Background(), id, bag); err != nil {
			return err
		}
	}
	buff, err := hintstore.MarshalBag(bag)
	if err != nil {
		return err
	}
	return writeOut(c, buff)
}
