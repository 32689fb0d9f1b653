package config

// DefaultRules is the ruleset used when no rules file is configured. The
// engine prompt references the labels and rating bands verbatim.
const DefaultRules = `
# Privacy Classification Rules

## CONFIDENTIAL (Rating 8-10)
- API keys, passwords, tokens, certificates
- Customer personal data (SSN, credit cards, addresses)
- Financial data, salary information
- Medical records, HIPAA protected data
- Legal documents, contracts
- Internal company strategies, unreleased products

## INTERNAL (Rating 5-7)
- Employee directories, org charts
- Internal system screenshots, dashboards
- Company financial reports (non-public)
- Internal project timelines, roadmaps
- Customer lists, business contacts

## RESTRICTED (Rating 3-4)
- Source code, architecture diagrams
- Database schemas, system configurations
- Training materials, internal processes
- Performance data, metrics

## PUBLIC (Rating 0-2)
- Marketing materials, public websites
- Published documentation
- General business information
- Public social media content
`
