package domain

const (
	// DefaultListURL serves the flat file listing of the public image depot.
	DefaultListURL = "https://depot.galaxyproject.org/singularity/singularity.galaxyproject.org_list.txt"

	// DefaultMountRoot is where the depot is mounted on CVMFS clients.
	DefaultMountRoot = "/cvmfs/singularity.galaxyproject.org"

	// DefaultImageSubdir is the depot subdirectory holding the flat image files.
	DefaultImageSubdir = "all"

	DefaultCacheMaxAgeSeconds = 3600
	DefaultCacheFileName      = "images.db"

	// ListingTimeLayout parses the date+time fields of a listing line.
	ListingTimeLayout = "2006-01-02 15:04:05"
)
