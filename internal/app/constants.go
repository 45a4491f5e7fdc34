package app

// ArenaSeats is the number of seats in every arena room; all three hosted
// games are strictly two-player.
const ArenaSeats = 2

// MinPlayersToStartGame defines how many occupied seats a game needs before
// the host may start it. Kept centralized so tests can reference the rule.
const MinPlayersToStartGame = 2
