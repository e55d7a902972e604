package buildinfo

import "fmt"

const Graffiti = " _  ___   _ _   _ \n| |/ / \\ | | \\ | |\n| ' /|  \\| |  \\| |\n| . \\| |\\  | |\\  |\n|_|\\_\\_| \\_|_| \\_|\n\n"

// set with -ldflags "-X github.com/go-sod/knn/internal/buildinfo.BuildTag=..."
var (
	BuildTag string = "v0.0.0"
	Name     string = "knn"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

func (b buildinfo) String() string {
	return fmt.Sprintf("%s: %s, %s", b.Name(), b.Time(), b.Tag())
}

var Info buildinfo
