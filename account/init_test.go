package account

import (
	"bytes"
	"testing"

	"xdao.co/solframe/pod"
	"xdao.co/solframe/program"
	"xdao.co/solframe/pubkey"
	"xdao.co/solframe/system"
)

type vaultState struct {
	Authority pubkey.Pubkey
	Balance   uint64
}

func vaultBuffer(tag string) []byte {
	buf := alignedBytes(DiscriminantLen + pod.SizeOf[vaultState]())
	disc := StateDiscriminant(tag)
	copy(buf, disc[:])
	return buf
}

func TestStateDiscriminant_IsDeterministicAndTagScoped(t *testing.T) {
	d1 := StateDiscriminant("vault")
	d2 := StateDiscriminant("vault")
	if d1 != d2 {
		t.Fatalf("discriminant changed across calls")
	}
	if d1 == StateDiscriminant("escrow") {
		t.Fatalf("distinct tags produced the same discriminant")
	}
}

func TestData_ValidatesOwnerDiscriminantAndViews(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, _ := testContext(programID)

	info := &program.AccountInfo{
		Key:   pubkey.NewUnique(),
		Owner: programID,
		Data:  vaultBuffer("vault"),
	}
	d := &Data[vaultState]{Tag: "vault"}
	if err := Decode(d, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(d, nil, ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	st := d.Get()
	if st == nil {
		t.Fatalf("no state view after validation")
	}
	st.Balance = 77
	round, err := pod.Read[vaultState](info.Data[DiscriminantLen:])
	if err != nil {
		t.Fatalf("re-reading state: %v", err)
	}
	if round.Balance != 77 {
		t.Fatalf("view mutation did not reach the account buffer")
	}
}

func TestData_RejectsForeignOwner(t *testing.T) {
	ctx, _ := testContext(pubkey.NewUnique())
	info := &program.AccountInfo{
		Key:   pubkey.NewUnique(),
		Owner: pubkey.NewUnique(),
		Data:  vaultBuffer("vault"),
	}
	d := &Data[vaultState]{Tag: "vault"}
	if err := Decode(d, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(d, nil, ctx); program.CodeOf(err) != program.CodeOwnerMismatch {
		t.Fatalf("expected OWNER_MISMATCH, got %v", err)
	}
}

func TestData_RejectsWrongDiscriminant(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, _ := testContext(programID)
	info := &program.AccountInfo{
		Key:   pubkey.NewUnique(),
		Owner: programID,
		Data:  vaultBuffer("escrow"),
	}
	d := &Data[vaultState]{Tag: "vault"}
	if err := Decode(d, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(d, nil, ctx); program.CodeOf(err) != program.CodeDataMismatch {
		t.Fatalf("expected DATA_MISMATCH, got %v", err)
	}
}

type argSeeds struct {
	seeds [][]byte
}

func (a *argSeeds) Seeds() [][]byte { return a.seeds }

func TestSeeded_AcceptsCanonicalAddress(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, _ := testContext(programID)
	seeds := [][]byte{[]byte("vault"), {9}}
	addr, bump, err := pubkey.FindProgramAddress(seeds, programID)
	if err != nil {
		t.Fatalf("FindProgramAddress: %v", err)
	}

	s := &Seeded{Inner: &Unchecked{}, Seeds: seeds}
	if err := Decode(s, NewCursor([]*program.AccountInfo{{Key: addr}}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(s, nil, ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	signer := s.SignerSeeds()
	if len(signer) != len(seeds)+1 {
		t.Fatalf("SignerSeeds has %d parts, want %d", len(signer), len(seeds)+1)
	}
	if !bytes.Equal(signer[len(signer)-1], []byte{bump}) {
		t.Fatalf("SignerSeeds does not end with the bump %d", bump)
	}
	if got, ok := s.Bump(); !ok || got != bump {
		t.Fatalf("Bump() = %d/%v, want %d/true", got, ok, bump)
	}
}

func TestSeeded_RejectsNonCanonicalAddress(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, _ := testContext(programID)

	s := &Seeded{Inner: &Unchecked{}, Seeds: [][]byte{[]byte("vault")}}
	if err := Decode(s, NewCursor([]*program.AccountInfo{{Key: pubkey.NewUnique()}}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(s, nil, ctx); program.CodeOf(err) != program.CodeAddressMismatch {
		t.Fatalf("expected ADDRESS_MISMATCH, got %v", err)
	}
}

func TestSeeded_SeedsFromValidateArgument(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, _ := testContext(programID)
	seeds := [][]byte{[]byte("from-args")}
	addr, _, err := pubkey.FindProgramAddress(seeds, programID)
	if err != nil {
		t.Fatalf("FindProgramAddress: %v", err)
	}

	s := &Seeded{Inner: &Unchecked{}}
	if err := Decode(s, NewCursor([]*program.AccountInfo{{Key: addr}}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(s, &argSeeds{seeds: seeds}, ctx); err != nil {
		t.Fatalf("Validate with argument seeds: %v", err)
	}

	// No declared seeds and no providing argument is a hard error.
	s2 := &Seeded{Inner: &Unchecked{}}
	if err := Decode(s2, NewCursor([]*program.AccountInfo{{Key: addr}}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(s2, nil, ctx); program.CodeOf(err) != program.CodeInvalidSeeds {
		t.Fatalf("expected INVALID_SEEDS, got %v", err)
	}
}

func TestFunding_CachesTheFunder(t *testing.T) {
	ctx, _ := testContext(pubkey.NewUnique())
	f := &Funding{Inner: &Mut{Inner: &Signer{}}}
	if err := Decode(f, NewCursor([]*program.AccountInfo{signerInfo(pubkey.NewUnique())}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(f, nil, ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	funder := ctx.Funder()
	if funder == nil {
		t.Fatalf("funder was not cached on the context")
	}
	if !funder.CanCreate() {
		t.Fatalf("keypair funder must be able to create accounts")
	}
}

func TestInit_RequiresWritableTarget(t *testing.T) {
	ctx, _ := testContext(pubkey.NewUnique())
	i := &Init{Inner: &Signer{}, Space: 8}
	info := &program.AccountInfo{Key: pubkey.NewUnique(), IsSigner: true}
	if err := Decode(i, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(i, nil, ctx); program.CodeOf(err) != program.CodeNotWritable {
		t.Fatalf("expected NOT_WRITABLE, got %v", err)
	}
}

func TestInit_RequiresAFunder(t *testing.T) {
	ctx, _ := testContext(pubkey.NewUnique())
	i := &Init{Inner: &Signer{}, Space: 8}
	if err := Decode(i, NewCursor([]*program.AccountInfo{signerInfo(pubkey.NewUnique())}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(i, nil, ctx); program.CodeOf(err) != program.CodeMissingFunder {
		t.Fatalf("expected MISSING_FUNDER, got %v", err)
	}
}

func TestInit_UnseededTargetMustSign(t *testing.T) {
	ctx, _ := testContext(pubkey.NewUnique())

	funding := &Funding{Inner: &Signer{}}
	if err := Decode(funding, NewCursor([]*program.AccountInfo{signerInfo(pubkey.NewUnique())}), nil, ctx); err != nil {
		t.Fatalf("Decode funder: %v", err)
	}
	if err := Validate(funding, nil, ctx); err != nil {
		t.Fatalf("Validate funder: %v", err)
	}

	i := &Init{Inner: &Unchecked{}, Space: 8}
	info := &program.AccountInfo{Key: pubkey.NewUnique(), IsWritable: true}
	if err := Decode(i, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(i, nil, ctx); program.CodeOf(err) != program.CodeMissingSigner {
		t.Fatalf("expected MISSING_SIGNER, got %v", err)
	}
}

// setupFundedContext validates a signer as the call's funder and returns the
// context plus host.
func setupFundedContext(t *testing.T, programID pubkey.Pubkey, funderLamports uint64) (*program.Context, *testHost) {
	t.Helper()
	ctx, host := testContext(programID)
	funderInfo := signerInfo(pubkey.NewUnique())
	funderInfo.Lamports = funderLamports
	funding := &Funding{Inner: &Mut{Inner: &Signer{}}}
	if err := Decode(funding, NewCursor([]*program.AccountInfo{funderInfo}), nil, ctx); err != nil {
		t.Fatalf("Decode funder: %v", err)
	}
	if err := Validate(funding, nil, ctx); err != nil {
		t.Fatalf("Validate funder: %v", err)
	}
	return ctx, host
}

func TestInit_CreatesSeededStateAccount(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, host := setupFundedContext(t, programID, 1_000_000_000)

	seeds := [][]byte{[]byte("vault"), {1}}
	addr, bump, err := pubkey.FindProgramAddress(seeds, programID)
	if err != nil {
		t.Fatalf("FindProgramAddress: %v", err)
	}
	info := &program.AccountInfo{Key: addr, IsWritable: true}

	state := &Data[vaultState]{Tag: "vault"}
	i := &Init{Inner: &Seeded{Inner: state, Seeds: seeds}, Space: state.Space()}

	host.invoke = func(ix program.Instruction, _ [][][]byte) error {
		if ix.ProgramID != system.ID {
			t.Fatalf("creation invoked %s, want the system program", ix.ProgramID)
		}
		info.Owner = programID
		info.Lamports = 1
		info.Data = alignedBytes(int(state.Space()))
		return nil
	}

	if err := Decode(i, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(i, nil, ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if !i.Created() {
		t.Fatalf("Created() = false after creation")
	}
	if len(host.invoked) != 1 {
		t.Fatalf("expected one creation invoke, got %d", len(host.invoked))
	}
	disc := StateDiscriminant("vault")
	if !bytes.Equal(info.Data[:DiscriminantLen], disc[:]) {
		t.Fatalf("discriminant was not stamped on the fresh account")
	}
	if state.Get() == nil {
		t.Fatalf("no state view after creation")
	}

	// The derived seed set (bump included) is carried for later nested calls.
	carried := ctx.SignerSeeds()
	if len(carried) != 1 {
		t.Fatalf("expected one carried seed set, got %d", len(carried))
	}
	last := carried[0][len(carried[0])-1]
	if !bytes.Equal(last, []byte{bump}) {
		t.Fatalf("carried seeds do not end with the bump %d", bump)
	}
}

func TestInit_TopsUpOnlyTheShortfall(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, host := setupFundedContext(t, programID, 1_000_000_000)

	rent, err := ctx.Rent()
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	minimum := rent.MinimumBalance(8)

	// Partially pre-funded, so creation cannot go through the single
	// create-account path.
	info := signerInfo(pubkey.NewUnique())
	info.Lamports = minimum / 2
	host.invoke = func(ix program.Instruction, _ [][][]byte) error {
		return nil
	}

	i := &Init{Inner: &Signer{}, Space: 8}
	if err := Decode(i, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(i, nil, ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// Transfer of the shortfall, then allocate, then assign.
	if len(host.invoked) != 3 {
		t.Fatalf("expected 3 invokes, got %d", len(host.invoked))
	}
	transfer, err := pod.Read[system.TransferArgs](host.invoked[0].Data[system.TagWidth:])
	if err != nil {
		t.Fatalf("decoding transfer args: %v", err)
	}
	if want := minimum - minimum/2; transfer.Lamports != want {
		t.Fatalf("topped up %d lamports, want the shortfall %d", transfer.Lamports, want)
	}
}

func TestInit_AlreadyFundedSkipsTransfer(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, host := setupFundedContext(t, programID, 1_000_000_000)

	rent, err := ctx.Rent()
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	info := signerInfo(pubkey.NewUnique())
	info.Lamports = rent.MinimumBalance(8) * 2

	i := &Init{Inner: &Signer{}, Space: 8}
	if err := Decode(i, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(i, nil, ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// Allocate and assign only; an over-funded account is never drawn down.
	if len(host.invoked) != 2 {
		t.Fatalf("expected 2 invokes, got %d", len(host.invoked))
	}
}

func TestInit_IfNeededSkipsExistingAccount(t *testing.T) {
	programID := pubkey.NewUnique()
	ctx, host := setupFundedContext(t, programID, 1_000_000_000)

	info := &program.AccountInfo{
		Key:        pubkey.NewUnique(),
		Owner:      programID,
		IsWritable: true,
		Lamports:   5,
		Data:       vaultBuffer("vault"),
	}
	state := &Data[vaultState]{Tag: "vault"}
	i := &Init{Inner: state, Space: state.Space(), IfNeeded: true}
	if err := Decode(i, NewCursor([]*program.AccountInfo{info}), nil, ctx); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(i, nil, ctx); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if i.Created() {
		t.Fatalf("IfNeeded re-created an existing account")
	}
	if len(host.invoked) != 0 {
		t.Fatalf("IfNeeded transferred on an existing account: %d invokes", len(host.invoked))
	}
	if info.Lamports != 5 {
		t.Fatalf("existing balance changed: %d", info.Lamports)
	}
}
