package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type Team string

const (
	TeamRed    Team = "red"
	TeamPurple Team = "purple"
	TeamGrey   Team = "grey"
)

// Opponent returns the other playable team. Grey has no opponent.
func (t Team) Opponent() Team {
	switch t {
	case TeamRed:
		return TeamPurple
	case TeamPurple:
		return TeamRed
	}
	return TeamGrey
}

type UnitClass string

const (
	UnitInf1   UnitClass = "inf1"
	UnitInf2   UnitClass = "inf2"
	UnitTank1  UnitClass = "tank1"
	UnitTank2  UnitClass = "tank2"
	UnitWarcat UnitClass = "warcat"
)

type BuildingClass string

const (
	BuildingB1 BuildingClass = "b1"
	BuildingB2 BuildingClass = "b2"
	BuildingB3 BuildingClass = "b3"
	BuildingB4 BuildingClass = "b4"
)

// UnitPath tags a unit class with its owning team. It serializes as the
// wire string "<team>_<class>" (e.g. "red_warcat") that clients render.
type UnitPath struct {
	Team  Team
	Class UnitClass
}

func (p UnitPath) String() string {
	return string(p.Team) + "_" + string(p.Class)
}

func ParseUnitPath(s string) (UnitPath, error) {
	team, kind, ok := strings.Cut(s, "_")
	if !ok {
		return UnitPath{}, fmt.Errorf("invalid unit path %q", s)
	}
	t := Team(team)
	if t != TeamRed && t != TeamPurple {
		return UnitPath{}, fmt.Errorf("invalid unit team %q", team)
	}
	switch c := UnitClass(kind); c {
	case UnitInf1, UnitInf2, UnitTank1, UnitTank2, UnitWarcat:
		return UnitPath{Team: t, Class: c}, nil
	}
	return UnitPath{}, fmt.Errorf("invalid unit class %q", kind)
}

func (p UnitPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *UnitPath) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUnitPath(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p UnitPath) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(p.String())
}

func (p *UnitPath) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return err
	}
	parsed, err := ParseUnitPath(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// BuildingPath tags a building class with its owning team, which may be
// grey (neutral). Wire format matches UnitPath: "grey_b2", "red_b4", ...
type BuildingPath struct {
	Team  Team
	Class BuildingClass
}

func (p BuildingPath) String() string {
	return string(p.Team) + "_" + string(p.Class)
}

// Retagged returns the same building class owned by another team. This is
// the capture/revert transition: grey -> capturing team, damaged team
// building -> grey.
func (p BuildingPath) Retagged(team Team) BuildingPath {
	return BuildingPath{Team: team, Class: p.Class}
}

func ParseBuildingPath(s string) (BuildingPath, error) {
	team, kind, ok := strings.Cut(s, "_")
	if !ok {
		return BuildingPath{}, fmt.Errorf("invalid building path %q", s)
	}
	t := Team(team)
	if t != TeamRed && t != TeamPurple && t != TeamGrey {
		return BuildingPath{}, fmt.Errorf("invalid building team %q", team)
	}
	switch c := BuildingClass(kind); c {
	case BuildingB1, BuildingB2, BuildingB3, BuildingB4:
		return BuildingPath{Team: t, Class: c}, nil
	}
	return BuildingPath{}, fmt.Errorf("invalid building class %q", kind)
}

func (p BuildingPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *BuildingPath) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBuildingPath(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p BuildingPath) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(p.String())
}

func (p *BuildingPath) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return err
	}
	parsed, err := ParseBuildingPath(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
