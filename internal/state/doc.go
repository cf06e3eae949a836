// Package state keeps the durable crawl tree: base verbs, their derived
// forms, one query per subcorpus and grammatical category, and the
// results found for each query.
//
// The tree is an XML document so that a researcher can inspect it with
// any editor:
//
//	<crawl>
//	  <baseVerb idx="1" simplex="драть" dateCreated="..." timeCreated="...">
//	    <derivedVerb idx="1" prefixed="true" suffixed="false" ...>
//	      <prefix prefixName="po-" variant="по"></prefix>
//	      <fullVerb>подрать</fullVerb>
//	      <query subcorpus="Modern" grammForm="praet" successful="true" nextPage="1" ...>
//	        <results>
//	          <result pageIndex="0" tokens="4">
//	            <sourceName begDate="1950" centerDate="1975" endDate="2000">...</sourceName>
//	          </result>
//	        </results>
//	      </query>
//	    </derivedVerb>
//	  </baseVerb>
//	</crawl>
//
// Nodes are created lazily and never deleted. A query's completion flag
// only moves from pending to done, and only through Store.MarkDone.
// Results are appended page by page, so an interrupted crawl resumes at
// the query's nextPage.
//
// A Store is safe for concurrent use. Claim and Release let a worker pool
// share one store without two workers crawling the same query.
package state
