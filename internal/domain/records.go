package domain

// Source records are the typed output of the source parsers. Upstream
// payloads are schema-loose, so every record carries an Extras bag for
// fields the engine does not model; parsers log unknown keys at debug level
// instead of dropping them silently.

// ClinVarRecord is one parsed VariationArchive entry.
type ClinVarRecord struct {
	VariationID          string            `json:"variation_id"`
	Title                string            `json:"title,omitempty"`
	GeneSymbol           string            `json:"gene_symbol,omitempty"`
	GeneID               string            `json:"gene_id,omitempty"`
	Assembly             string            `json:"assembly,omitempty"`
	Chromosome           string            `json:"chromosome,omitempty"`
	Position             int64             `json:"position,omitempty"`
	Reference            string            `json:"reference,omitempty"`
	Alternate            string            `json:"alternate,omitempty"`
	ClinicalSignificance string            `json:"clinical_significance,omitempty"`
	ReviewStatus         string            `json:"review_status,omitempty"`
	Phenotypes           []string          `json:"phenotypes,omitempty"`
	HGVSExpressions      []string          `json:"hgvs_expressions,omitempty"`
	Extras               map[string]string `json:"extras,omitempty"`
	Provenance           Provenance        `json:"provenance"`
}

// PubMedRecord is one parsed PubmedArticle entry.
type PubMedRecord struct {
	PMID       string            `json:"pmid"`
	Title      string            `json:"title,omitempty"`
	Abstract   string            `json:"abstract,omitempty"`
	Authors    []string          `json:"authors,omitempty"`
	Journal    string            `json:"journal,omitempty"`
	PubYear    string            `json:"pub_year,omitempty"`
	PubMonth   string            `json:"pub_month,omitempty"`
	DOI        string            `json:"doi,omitempty"`
	PMCID      string            `json:"pmc_id,omitempty"`
	Extras     map[string]string `json:"extras,omitempty"`
	Provenance Provenance        `json:"provenance"`
}

// HPOTerm is one parsed Human Phenotype Ontology term.
type HPOTerm struct {
	HPOID      string            `json:"hpo_id"`
	Name       string            `json:"name"`
	Definition string            `json:"definition,omitempty"`
	Synonyms   []string          `json:"synonyms,omitempty"`
	Xrefs      []string          `json:"xrefs,omitempty"`
	IsObsolete bool              `json:"is_obsolete,omitempty"`
	ReplacedBy string            `json:"replaced_by,omitempty"`
	Extras     map[string]string `json:"extras,omitempty"`
	Provenance Provenance        `json:"provenance"`
}

// UniProtDBReference is one database cross-reference on a UniProt entry.
type UniProtDBReference struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// UniProtReference is one literature citation on a UniProt entry.
type UniProtReference struct {
	Title    string   `json:"title,omitempty"`
	Authors  []string `json:"authors,omitempty"`
	Journal  string   `json:"journal,omitempty"`
	PubYear  string   `json:"pub_year,omitempty"`
	DOI      string   `json:"doi,omitempty"`
	PubMedID string   `json:"pubmed_id,omitempty"`
}

// UniProtRecord is one parsed UniProtKB entry.
type UniProtRecord struct {
	PrimaryAccession string               `json:"primary_accession"`
	UniProtKBID      string               `json:"uniprotkb_id,omitempty"`
	ProteinName      string               `json:"protein_name,omitempty"`
	GeneSymbol       string               `json:"gene_symbol,omitempty"`
	GeneSynonyms     []string             `json:"gene_synonyms,omitempty"`
	OrganismName     string               `json:"organism_name,omitempty"`
	TaxonID          int64                `json:"taxon_id,omitempty"`
	SequenceLength   int                  `json:"sequence_length,omitempty"`
	SequenceMass     int64                `json:"sequence_mass,omitempty"`
	FunctionComments []string             `json:"function_comments,omitempty"`
	DBReferences     []UniProtDBReference `json:"db_references,omitempty"`
	References       []UniProtReference   `json:"references,omitempty"`
	Extras           map[string]string    `json:"extras,omitempty"`
	Provenance       Provenance           `json:"provenance"`
}
