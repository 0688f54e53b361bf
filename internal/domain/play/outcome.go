package play

import "github.com/riskibarqy/haxfootball-room/internal/domain/field"

// Outcome is how the engine reports a finished play. Player references are
// room ids; zero means nobody.
type Outcome struct {
	// Yards gained by the offense from the spot. For punts this is the net
	// distance the kicking team gained, returns included.
	Yards       int
	ReturnYards int
	Completed   bool
	Touchdown   bool
	Turnover    bool
	Safety      bool
	// EndSpot overrides the spot derived from Yards when the engine knows
	// exactly where the ball died.
	EndSpot *field.Position

	BallcarrierID int
	PasserID      int
	ReceiverID    int
	KickerID      int
	ReturnerID    int
	TacklerID     int
	DefenderID    int
}
