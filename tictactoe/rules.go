package tictactoe

// Lines are the 8 winning triples: 3 rows, 3 columns and 2 diagonals.
var Lines = [8][3]Action{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Winner returns the player holding a complete line in s, or Empty if there
// is none. If several lines are complete, the first one in Lines wins.
func Winner(s State) Player {
	for _, line := range Lines {
		c := s.Cell(line[0])
		if c != Empty && c == s.Cell(line[1]) && c == s.Cell(line[2]) {
			return c
		}
	}

	return Empty
}

// IsDraw returns true if the board is full and nobody has won.
func IsDraw(s State) bool {
	return Winner(s) == Empty && Decode(s).Full()
}

// IsTerminal returns true if the game is over.
func IsTerminal(s State) bool {
	return Winner(s) != Empty || Decode(s).Full()
}
