package datacite

// Identifier is an alternate identifier of the registered resource.
type Identifier struct {
	Identifier     string `json:"identifier"     mapstructure:"identifier"     validate:"required"`
	IdentifierType string `json:"identifierType" mapstructure:"identifierType" validate:"required"`
}

type Creator struct {
	Name        string `json:"name"        mapstructure:"name"        validate:"required"`
	Affiliation string `json:"affiliation" mapstructure:"affiliation"`
}

type Title struct {
	Title     string `json:"title"               mapstructure:"title"     validate:"required"`
	TitleType string `json:"titleType,omitempty" mapstructure:"titleType"`
}

type Subject struct {
	Subject       string `json:"subject"       mapstructure:"subject"       validate:"required"`
	SubjectScheme string `json:"subjectScheme" mapstructure:"subjectScheme"`
	SchemeURI     string `json:"schemeURI"     mapstructure:"schemeURI"`
	ValueURI      string `json:"valueURI"      mapstructure:"valueURI"`
}

type Contributor struct {
	Name            string `json:"name"            mapstructure:"name"            validate:"required"`
	Affiliation     string `json:"affiliation"     mapstructure:"affiliation"`
	ContributorType string `json:"contributorType" mapstructure:"contributorType" validate:"required"`
}

type Date struct {
	Date            string `json:"date"                      mapstructure:"date"            validate:"required"`
	DateType        string `json:"dateType"                  mapstructure:"dateType"        validate:"required"`
	DateInformation string `json:"dateInformation,omitempty" mapstructure:"dateInformation"`
}

type Description struct {
	Description     string `json:"description"     mapstructure:"description"     validate:"required"`
	DescriptionType string `json:"descriptionType" mapstructure:"descriptionType" validate:"required"`
}

type GeoLocation struct {
	GeoLocationPlace   string `json:"geoLocationPlace,omitempty"   mapstructure:"geoLocationPlace"`
	GeoLocationPoint   string `json:"geoLocationPoint,omitempty"   mapstructure:"geoLocationPoint"`
	GeoLocationBox     string `json:"geoLocationBox,omitempty"     mapstructure:"geoLocationBox"`
	GeoLocationPolygon string `json:"geoLocationPolygon,omitempty" mapstructure:"geoLocationPolygon"`
}

type Right struct {
	RightURI               string `json:"rightURI"               mapstructure:"rightURI"`
	RightsIdentifier       string `json:"rightsIdentifier"       mapstructure:"rightsIdentifier"`
	RightsIdentifierScheme string `json:"rightsIdentifierScheme" mapstructure:"rightsIdentifierScheme"`
	SchemeURI              string `json:"schemeURI"              mapstructure:"schemeURI"`
}

type RelatedIdentifier struct {
	RelatedIdentifier     string `json:"relatedIdentifier"     mapstructure:"relatedIdentifier"     validate:"required"`
	RelatedIdentifierType string `json:"relatedIdentifierType" mapstructure:"relatedIdentifierType" validate:"required"`
	RelationType          string `json:"relationType"          mapstructure:"relationType"          validate:"required"`
}

// Submission holds the attributes of a DataCite DOI registration. Optional
// groups are nil when the configuration does not supply them.
type Submission struct {
	// required
	Prefix              string       `json:"prefix"              validate:"required"`
	Suffix              string       `json:"suffix"              validate:"required"`
	URL                 string       `json:"url"                 validate:"required,url"`
	Identifiers         []Identifier `json:"identifiers"         validate:"required,min=1,dive"`
	Creators            []Creator    `json:"creators"            validate:"required,min=1,dive"`
	Titles              []Title      `json:"titles"              validate:"required,min=1,dive"`
	Publisher           string       `json:"publisher"           validate:"required"`
	PublicationYear     int          `json:"publicationYear"     validate:"required"`
	ResourceTypeGeneral string       `json:"resourceTypeGeneral" validate:"required"`
	ResourceType        string       `json:"resourceType"        validate:"required"`

	// recommended
	Subjects           []Subject           `json:"subjects"                     validate:"dive"`
	Contributors       []Contributor       `json:"contributors,omitempty"       validate:"omitempty,dive"`
	Dates              []Date              `json:"dates"                        validate:"dive"`
	RelatedIdentifiers []RelatedIdentifier `json:"relatedIdentifiers,omitempty" validate:"omitempty,dive"`
	Descriptions       []Description       `json:"descriptions"                 validate:"dive"`
	GeoLocations       []GeoLocation       `json:"geoLocations"`

	// optional
	Language string   `json:"language,omitempty"`
	Rights   []Right  `json:"rights,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Version  string   `json:"version,omitempty"`
}

// CreateRequest is the JSON:API document posted to create a DOI.
type CreateRequest struct {
	Data CreateData `json:"data"`
}

type CreateData struct {
	Type       string     `json:"type"`
	Attributes Submission `json:"attributes"`
}

func NewCreateRequest(s Submission) CreateRequest {
	return CreateRequest{Data: CreateData{Type: "dois", Attributes: s}}
}

// UpdateRequest carries arbitrary attributes for a PUT on an existing DOI.
type UpdateRequest struct {
	Data UpdateData `json:"data"`
}

type UpdateData struct {
	Attributes any `json:"attributes"`
}
