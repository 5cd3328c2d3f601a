package session

// Prompt templates for the three LLM phases. All structured outputs are
// requested as bare JSON; parsing still tolerates fenced or chatty replies.

const sufficiencyPromptTemplate = `You are evaluating whether an issue contains enough information to write useful marketing or documentation content.

Issue title: %s
Issue description: %s
Project: %s
Attachments: %d
User comments: %d

Judge whether a professional copywriter could produce a useful first draft from this. Respond with ONLY a JSON object:
{
  "isSufficient": true or false,
  "quality": "high" | "medium" | "low",
  "missingInformation": ["..."],
  "elicitationQuestion": "one concise question to ask the user, when insufficient",
  "reasoning": "one sentence"
}`

const planResearchPromptTemplate = `You are planning a piece of content and extracting research from the available sources in one pass.

## Issue
Title: %s
Description: %s

## Project
%s

## Style preferences
%s

## Available resources
Images: %d
External links fetched: %d
User comments: %d

## Fetched link content
%s

## User comments
%s

Respond with ONLY a JSON object combining a plan and research:
{
  "plan": {
    "contentType": "e.g. blog post, LinkedIn post, product announcement, documentation page",
    "reasoning": "why this content type",
    "proposedStructure": {
      "sections": ["ordered section names"],
      "format": "format description",
      "organization": "how the sections flow"
    },
    "keyRequirements": ["..."],
    "approach": "overall approach",
    "considerations": ["..."]
  },
  "research": {
    "keyFacts": ["..."],
    "toneIndicators": ["..."],
    "audienceContext": "who this is for",
    "contentRequirements": ["..."],
    "constraints": ["..."],
    "synthesizedInfo": "a paragraph synthesizing everything relevant"
  }
}`

const generationSystemPromptTemplate = `You are a professional copywriter producing final, publish-ready content.

## Content plan
Type: %s
Approach: %s
Sections (render these exactly, in order): %s
Format: %s
Organization: %s
Key requirements:
%s

## Research
Audience: %s
Key facts:
%s
Tone indicators: %s
Constraints:
%s
Synthesized background: %s

## Workspace style preferences
%s

Render the content now. Output only the content itself: no preamble, no explanation of what you did, no closing remarks.`
