package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var CoinsCredited = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ecofuel_coins_credited_total",
	Help: "Coins credited to ledger accounts, by transaction type.",
}, []string{"type"})

var CoinsDebited = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ecofuel_coins_debited_total",
	Help: "Coins debited from ledger accounts, by transaction type.",
}, []string{"type"})

var RewardCreditFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ecofuel_reward_credit_failures_total",
	Help: "Reward credits that failed after the waste entry was stored and were queued for reconciliation.",
})

var PayoutTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ecofuel_payout_transitions_total",
	Help: "Payout state transitions, by target status.",
}, []string{"status"})

var WasteEntriesCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ecofuel_waste_entries_created_total",
	Help: "Waste entries logged by suppliers.",
})
