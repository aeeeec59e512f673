package citizens

import "github.com/soratane/aicity/internal/world"

// seedDef describes one founding citizen.
type seedDef struct {
	name   string
	age    int
	gender Gender
	role   Role
	home   world.LocationID
}

// Founding population: four families plus eighteen other residents.
var citizenDefs = []seedDef{
	// Tanaka family
	{"Tanaka Kenichi", 45, Male, RoleFarmer, world.LocResidentialNorth},
	{"Tanaka Misaki", 42, Female, RoleMerchant, world.LocResidentialNorth},
	{"Tanaka Shota", 20, Male, RoleEngineer, world.LocResidentialNorth},
	// Suzuki family
	{"Suzuki Ichiro", 50, Male, RoleLegislator, world.LocResidentialSouth},
	{"Suzuki Hanako", 48, Female, RoleTeacher, world.LocResidentialSouth},
	{"Suzuki Ai", 22, Female, RoleArtist, world.LocResidentialSouth},
	// Sato family
	{"Sato Daisuke", 40, Male, RoleChef, world.LocResidentialSouth},
	{"Sato Yumi", 38, Female, RoleDoctor, world.LocResidentialSouth},
	{"Sato Ren", 18, Male, RoleArtisan, world.LocResidentialSouth},
	// Nakamura family
	{"Nakamura Masayoshi", 55, Male, RoleLegislator, world.LocResidentialNorth},
	{"Nakamura Sachiko", 52, Female, RoleCivilServant, world.LocResidentialNorth},
	{"Nakamura Mizuki", 25, Female, RoleEngineer, world.LocResidentialNorth},
	// Everyone else
	{"Yamada Taro", 60, Male, RoleLegislator, world.LocResidentialNorth},
	{"Takahashi Makoto", 35, Male, RoleOfficer, world.LocResidentialSouth},
	{"Ito Sakura", 28, Female, RoleTeacher, world.LocResidentialNorth},
	{"Watanabe Takashi", 65, Male, RoleJudge, world.LocResidentialSouth},
	{"Kobayashi Mari", 33, Female, RoleDoctor, world.LocResidentialNorth},
	{"Kato Takeshi", 44, Male, RoleMerchant, world.LocResidentialSouth},
	{"Yoshida Megumi", 29, Female, RoleChef, world.LocResidentialNorth},
	{"Yamamoto Koji", 52, Male, RoleCivilServant, world.LocResidentialSouth},
	{"Matsumoto Mai", 26, Female, RoleArtist, world.LocResidentialNorth},
	{"Inoue Takuya", 38, Male, RoleEngineer, world.LocResidentialSouth},
	{"Kimura Haruka", 31, Female, RoleMerchant, world.LocResidentialNorth},
	{"Saito Tsuyoshi", 47, Male, RoleLegislator, world.LocResidentialSouth},
	{"Yamaguchi Miho", 36, Female, RoleOfficer, world.LocResidentialNorth},
	{"Morita Kenta", 41, Male, RoleArtisan, world.LocResidentialSouth},
	{"Fujita Akari", 24, Female, RoleCivilServant, world.LocResidentialNorth},
	{"Okada Isamu", 58, Male, RoleLegislator, world.LocResidentialSouth},
	{"Hasegawa Ryoko", 34, Female, RoleEngineer, world.LocResidentialNorth},
	{"Ishii Taichi", 27, Male, RoleFarmer, world.LocResidentialSouth},
}

// familyDef declares a founding household by name.
type familyDef struct {
	husband  string
	wife     string
	children []string
}

var familyDefs = []familyDef{
	{"Tanaka Kenichi", "Tanaka Misaki", []string{"Tanaka Shota"}},
	{"Suzuki Ichiro", "Suzuki Hanako", []string{"Suzuki Ai"}},
	{"Sato Daisuke", "Sato Yumi", []string{"Sato Ren"}},
	{"Nakamura Masayoshi", "Nakamura Sachiko", []string{"Nakamura Mizuki"}},
}
