package cart_test

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cartsync/internal/cart"
)

type fixture struct {
	apple  *fakeCard
	banana *fakeCard
	total  *fakeTotal
	store  *memStore
	sync   *cart.Synchronizer
}

func newFixture(t *testing.T, persisted string) fixture {
	t.Helper()
	f := fixture{
		apple:  newCard(" Apple ", "$1.50"),
		banana: newCard("Banana", "0.75 $"),
		total:  &fakeTotal{},
		store:  newMemStore(),
	}
	if persisted != "" {
		f.store.values[cart.DefaultStorageKey] = persisted
	}
	f.sync = cart.New(cart.Config{
		List:  fakeList{f.apple, f.banana},
		Total: f.total,
		Store: f.store,
	})
	f.sync.Initialize(context.Background())
	return f
}

func (f fixture) persisted(t *testing.T) cart.Cart {
	t.Helper()
	c, ok := cart.DecodeCart(f.store.values[cart.DefaultStorageKey])
	require.True(t, ok)
	return c
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	require.Equal(t, "0.00 $", f.total.text)

	f.sync.ChangeQuantity(ctx, f.apple, 1)
	f.sync.ChangeQuantity(ctx, f.apple, 1)
	require.Equal(t, "2", *f.apple.quantity)
	require.Equal(t, "3.00 $", f.total.text)
	require.Equal(t, cart.Cart{"Apple": 2}, f.persisted(t))

	f.sync.ChangeQuantity(ctx, f.banana, 1)
	require.Equal(t, "3.75 $", f.total.text)
	require.Equal(t, cart.Cart{"Apple": 2, "Banana": 1}, f.persisted(t))

	f.sync.SetQuantityToZero(ctx, f.apple)
	require.Equal(t, "0.75 $", f.total.text)
	require.Equal(t, cart.Cart{"Banana": 1}, f.persisted(t))
}

func TestQuantityNeverNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	deltas := []int{-1, 1, -1, -1, -1, 3, -2, -5, 1, -1, -1}
	for _, d := range deltas {
		got := f.sync.ChangeQuantity(ctx, f.apple, d)
		require.GreaterOrEqual(t, got, 0)
		require.Equal(t, got, cart.Quantity(f.apple))
	}
	require.Equal(t, "0.00 $", f.total.text)
	require.Empty(t, f.persisted(t))
}

func TestChangeQuantityAcceptsAnyDelta(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	require.Equal(t, 10, f.sync.ChangeQuantity(ctx, f.banana, 10))
	require.Equal(t, "7.50 $", f.total.text)
	require.Equal(t, 0, f.sync.ChangeQuantity(ctx, f.banana, -100))
	require.Equal(t, "0.00 $", f.total.text)
}

func TestRemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, `{"Apple":3,"Banana":1}`)
	require.Equal(t, "5.25 $", f.total.text)

	f.sync.SetQuantityToZero(ctx, f.apple)
	f.sync.SetQuantityToZero(ctx, f.apple)
	require.Equal(t, "0", *f.apple.quantity)
	require.Equal(t, cart.Cart{"Banana": 1}, f.persisted(t))
	require.Equal(t, "0.75 $", f.total.text)
}

func TestRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	f.sync.ChangeQuantity(ctx, f.apple, 4)
	f.sync.ChangeQuantity(ctx, f.banana, 2)

	apple := newCard("Apple", "1.50")
	banana := newCard("Banana", "0.75")
	total := &fakeTotal{}
	reloaded := cart.New(cart.Config{List: fakeList{banana, apple}, Total: total, Store: f.store})
	reloaded.Initialize(ctx)

	require.Equal(t, "4", *apple.quantity)
	require.Equal(t, "2", *banana.quantity)
	require.Equal(t, f.total.text, total.text)
}

func TestLargeQuantitiesSurviveReload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")

	require.Equal(t, cart.MaxQuantity, f.sync.ChangeQuantity(ctx, f.apple, 3_000_000_000))
	require.Equal(t, cart.Cart{"Apple": cart.MaxQuantity}, f.persisted(t))

	f.sync.ChangeQuantity(ctx, f.banana, 5)
	require.Equal(t, cart.MaxQuantity, f.sync.ChangeQuantity(ctx, f.banana, math.MaxInt))

	apple := newCard("Apple", "1.50")
	banana := newCard("Banana", "0.75")
	total := &fakeTotal{}
	reloaded := cart.New(cart.Config{List: fakeList{apple, banana}, Total: total, Store: f.store})
	reloaded.Initialize(ctx)

	require.Equal(t, strconv.Itoa(cart.MaxQuantity), *apple.quantity)
	require.Equal(t, strconv.Itoa(cart.MaxQuantity), *banana.quantity)
	require.Equal(t, f.total.text, total.text)
	require.NotEqual(t, "0.00 $", total.text)
}

func TestAddQuantity(t *testing.T) {
	cases := []struct {
		current, delta, want int
	}{
		{0, 1, 1},
		{3, -1, 2},
		{1, -5, 0},
		{5, math.MaxInt, cart.MaxQuantity},
		{5, math.MinInt, 0},
		{cart.MaxQuantity, 1, cart.MaxQuantity},
		{math.MaxInt, -1, cart.MaxQuantity - 1},
		{-3, 2, 2},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, cart.AddQuantity(tc.current, tc.delta), "%d%+d", tc.current, tc.delta)
	}
}

func TestMalformedPersistedData(t *testing.T) {
	for _, raw := range []string{"not json", "[1,2]", "null", `"x"`, `{"Apple":`} {
		t.Run(raw, func(t *testing.T) {
			f := newFixture(t, raw)
			require.Equal(t, "0", *f.apple.quantity)
			require.Equal(t, "0", *f.banana.quantity)
			require.Equal(t, "0.00 $", f.total.text)
		})
	}
}

func TestInitializeDropsInvalidEntries(t *testing.T) {
	f := newFixture(t, `{"Apple":-2,"Banana":"oops"}`)
	require.Equal(t, "0", *f.apple.quantity)
	require.Equal(t, "0", *f.banana.quantity)
}

func TestInitializeOverwritesStaleDisplay(t *testing.T) {
	apple := newCard("Apple", "1.50")
	*apple.quantity = "9"
	total := &fakeTotal{}
	s := cart.New(cart.Config{List: fakeList{apple}, Total: total, Store: newMemStore()})
	s.Initialize(context.Background())
	require.Equal(t, "0", *apple.quantity)
	require.Equal(t, "0.00 $", total.text)
}

func TestPersistCardRereadsStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	f.sync.ChangeQuantity(ctx, f.apple, 1)

	// Another writer adds an entry the listing does not show.
	f.store.values[cart.DefaultStorageKey] = `{"Apple":1,"Cherry":5}`
	f.sync.ChangeQuantity(ctx, f.apple, 1)
	require.Equal(t, cart.Cart{"Apple": 2, "Cherry": 5}, f.persisted(t))
}

func TestInertWithoutContainers(t *testing.T) {
	ctx := context.Background()
	apple := newCard("Apple", "1.50")
	st := newMemStore()

	noTotal := cart.New(cart.Config{List: fakeList{apple}, Store: st})
	noList := cart.New(cart.Config{Total: &fakeTotal{}, Store: st})
	for _, s := range []*cart.Synchronizer{noTotal, noList} {
		require.False(t, s.Active())
		s.Initialize(ctx)
		require.Equal(t, 0, s.ChangeQuantity(ctx, apple, 1))
		s.SetQuantityToZero(ctx, apple)
		require.True(t, s.RecomputeTotal().IsZero())
		require.Equal(t, cart.ActionNone, s.Dispatch(ctx, newIcon(apple, cart.ClassIncrement)).Action)
	}
	require.Equal(t, "", *apple.quantity)
	require.Zero(t, st.writes)
}

func TestMissingFieldsDefault(t *testing.T) {
	ctx := context.Background()
	bare := &fakeCard{}
	priced := &fakeCard{price: str("abc"), quantity: str("")}
	total := &fakeTotal{}
	st := newMemStore()
	s := cart.New(cart.Config{List: fakeList{bare, priced}, Total: total, Store: st})
	s.Initialize(ctx)
	require.Equal(t, "0.00 $", total.text)

	s.ChangeQuantity(ctx, priced, 2)
	require.Equal(t, "0.00 $", total.text)
	c, _ := cart.DecodeCart(st.values[cart.DefaultStorageKey])
	require.Equal(t, cart.Cart{cart.UnknownTitle: 2}, c)
}

func TestStoreFailuresDegradeSilently(t *testing.T) {
	ctx := context.Background()
	apple := newCard("Apple", "2")
	total := &fakeTotal{}
	st := newMemStore()
	st.getErr = errStoreDown
	st.setErr = errStoreDown
	s := cart.New(cart.Config{List: fakeList{apple}, Total: total, Store: st})
	s.Initialize(ctx)
	require.Equal(t, "0", *apple.quantity)

	require.Equal(t, 3, s.ChangeQuantity(ctx, apple, 3))
	require.Equal(t, "6.00 $", total.text)
	require.Empty(t, st.values)
}

func TestCustomStorageKey(t *testing.T) {
	ctx := context.Background()
	apple := newCard("Apple", "1")
	st := newMemStore()
	s := cart.New(cart.Config{List: fakeList{apple}, Total: &fakeTotal{}, Store: st, Key: "basket"})
	s.ChangeQuantity(ctx, apple, 1)
	require.Equal(t, `{"Apple":1}`, st.values["basket"])
	require.Equal(t, "basket", s.Key())
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")

	out := f.sync.Dispatch(ctx, newIcon(f.apple, "fa", cart.ClassIncrement))
	require.Equal(t, cart.ActionIncrement, out.Action)
	require.Equal(t, "Apple", out.Title)
	require.Equal(t, 1, out.Quantity)
	require.True(t, decimal.RequireFromString("1.5").Equal(out.Total))

	out = f.sync.Dispatch(ctx, newIcon(f.apple, cart.ClassDecrement))
	require.Equal(t, cart.ActionDecrement, out.Action)
	require.Equal(t, 0, out.Quantity)

	f.sync.Dispatch(ctx, newIcon(f.banana, cart.ClassIncrement))
	out = f.sync.Dispatch(ctx, newIcon(f.banana, cart.ClassRemove))
	require.Equal(t, cart.ActionRemove, out.Action)
	require.Equal(t, 0, out.Quantity)
	require.Empty(t, f.persisted(t))

	require.Equal(t, cart.ActionNone, f.sync.Dispatch(ctx, newIcon(f.apple, "card-title")).Action)
	require.Equal(t, cart.ActionNone, f.sync.Dispatch(ctx, newIcon(nil, cart.ClassIncrement)).Action)
	require.Equal(t, cart.ActionNone, f.sync.Dispatch(ctx, nil).Action)
}

func TestDispatchLikeLeavesCartAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, `{"Apple":1}`)
	writes := f.store.writes
	heart := newIcon(f.apple, "fa", cart.ClassLike)

	out := f.sync.Dispatch(ctx, heart)
	require.Equal(t, cart.ActionToggleLike, out.Action)
	require.True(t, out.Liked)
	require.Equal(t, 1, out.Quantity)
	require.Equal(t, "red", heart.style["color"])

	out = f.sync.Dispatch(ctx, heart)
	require.False(t, out.Liked)
	require.Empty(t, heart.style)
	require.Equal(t, []string{"fa", cart.ClassLike}, heart.classes)

	require.Equal(t, writes, f.store.writes)
	require.Equal(t, "1.50 $", f.total.text)
	require.Equal(t, cart.Cart{"Apple": 1}, f.persisted(t))
}

func TestFormatTotal(t *testing.T) {
	require.Equal(t, "0.00 $", cart.FormatTotal(decimal.Zero))
	require.Equal(t, "3.75 $", cart.FormatTotal(decimal.RequireFromString("3.75")))
	require.Equal(t, "0.01 $", cart.FormatTotal(decimal.RequireFromString("0.005")))
	require.Equal(t, "0.00 $", cart.FormatTotal(decimal.NewFromInt(-4)))
	require.Equal(t, "1234.50 $", cart.FormatTotal(decimal.RequireFromString("1234.5")))
}

func TestTotalIsExact(t *testing.T) {
	cards := fakeList{newCard("A", "0.10"), newCard("B", "0.20")}
	*cards[0].quantity = "3"
	*cards[1].quantity = "1"
	require.Equal(t, "0.50 $", cart.FormatTotal(cart.Total(cards.Cards())))
}

func TestSummarize(t *testing.T) {
	cards := fakeList{newCard("A", "0.10"), newCard("B", "0.20"), newCard("C", "x")}
	*cards[0].quantity = "3"
	*cards[1].quantity = "1"
	*cards[2].quantity = "4"
	sum := cart.Summarize(cards.Cards())
	require.Equal(t, 8, sum.Units)
	require.Equal(t, "0.50", sum.Total.StringFixed(2))
}
